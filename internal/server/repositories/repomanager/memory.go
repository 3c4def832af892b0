package repomanager

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/dmitrijs2005/herostore/internal/dbx"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/heroes"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps users and hero images in process memory.
// The DBTX handed to Users and Heroes is ignored, so writes made inside a
// transaction are not undone on rollback. Intended for tests and local runs.
type InMemoryRepositoryManager struct {
	mu     sync.Mutex
	users  map[int64]models.User
	images map[int64]models.HeroImage
	nextID int64
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:  make(map[int64]models.User),
		images: make(map[int64]models.HeroImage),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return &memoryUsers{m: m}
}

func (m *InMemoryRepositoryManager) Heroes(dbx.DBTX) heroes.Repository {
	return &memoryHeroes{m: m}
}

func (m *InMemoryRepositoryManager) id() int64 {
	m.nextID++
	return m.nextID
}

type memoryUsers struct {
	m *InMemoryRepositoryManager
}

func (r *memoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = r.m.id()
	user.RegistrationDate = time.Now().UTC()
	r.m.users[user.ID] = *user
	return user, nil
}

func (r *memoryUsers) find(match func(models.User) bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memoryUsers) update(userID int64, fn func(*models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	r.m.users[userID] = u
	return nil
}

func (r *memoryUsers) SetVerificationCode(_ context.Context, userID int64, code string) error {
	return r.update(userID, func(u *models.User) { u.EmailVerificationCode = &code })
}

func (r *memoryUsers) MarkEmailVerified(_ context.Context, userID int64) error {
	return r.update(userID, func(u *models.User) {
		u.IsEmailVerified = true
		u.EmailVerificationCode = nil
	})
}

type memoryHeroes struct {
	m *InMemoryRepositoryManager
}

func (r *memoryHeroes) Create(_ context.Context, image *models.HeroImage) (*models.HeroImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	image.ID = r.m.id()
	r.m.images[image.ID] = *image
	return image, nil
}

func (r *memoryHeroes) ListByUser(_ context.Context, userID int64) ([]models.HeroImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	result := make([]models.HeroImage, 0)
	for _, img := range r.m.images {
		if img.UserID == userID {
			result = append(result, img)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memoryHeroes) LockByUser(ctx context.Context, userID int64) ([]models.HeroImage, error) {
	return r.ListByUser(ctx, userID)
}

func (r *memoryHeroes) GetByID(_ context.Context, userID, id int64) (*models.HeroImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	img, ok := r.m.images[id]
	if !ok || img.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &img, nil
}

func (r *memoryHeroes) GetActive(_ context.Context, userID int64) (*models.HeroImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var found *models.HeroImage
	for _, img := range r.m.images {
		if img.UserID == userID && img.Active && (found == nil || img.ID < found.ID) {
			found = &img
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *memoryHeroes) mutate(userID, id int64, fn func(*models.HeroImage)) (*models.HeroImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	img, ok := r.m.images[id]
	if !ok || img.UserID != userID {
		return nil, common.ErrorNotFound
	}
	fn(&img)
	r.m.images[id] = img
	return &img, nil
}

func (r *memoryHeroes) UpdateImageURL(_ context.Context, userID, id int64, url string) (*models.HeroImage, error) {
	return r.mutate(userID, id, func(img *models.HeroImage) { img.ImageURL = url })
}

func (r *memoryHeroes) SetActive(_ context.Context, userID, id int64) (*models.HeroImage, error) {
	r.m.mu.Lock()
	for _, img := range r.m.images {
		if img.UserID == userID && img.Active && img.ID != id {
			r.m.mu.Unlock()
			return nil, common.ErrorAlreadyExists
		}
	}
	r.m.mu.Unlock()

	return r.mutate(userID, id, func(img *models.HeroImage) { img.Active = true })
}

func (r *memoryHeroes) ClearActive(_ context.Context, userID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for id, img := range r.m.images {
		if img.UserID == userID && img.Active {
			img.Active = false
			r.m.images[id] = img
		}
	}
	return nil
}

func (r *memoryHeroes) Delete(_ context.Context, userID, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	img, ok := r.m.images[id]
	if !ok || img.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.m.images, id)
	return nil
}
