package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/herostore/internal/dbx"
	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/config"
	"github.com/dmitrijs2005/herostore/internal/server/models"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/heroes"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/herostore/internal/server/storage"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		SigningAlgorithm:            "HS256",
		AccessTokenValidityDuration: time.Hour,
	}
}

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func newFakeMailer() *fakeMailer { return &fakeMailer{codes: map[string]string{}} }

func (f *fakeMailer) SendVerificationCode(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[email] = code
	return f.err
}

func (f *fakeMailer) code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (f *fakeStorage) Upload(_ context.Context, folder, filename, _ string, body []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "http://s3.test/media/" + storage.ObjectKey(folder, storage.ObjectName(filename))
	if _, ok := f.objects[url]; ok {
		return "", storage.ErrDuplicateObject
	}
	f.objects[url] = body
	return url, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string, url string) error {
	f.deleted = append(f.deleted, url)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, url)
	return nil
}

var errCreate = errors.New("insert failed")

// failingCreateManager wraps the in-memory manager and makes image inserts fail.
type failingCreateManager struct {
	*repomanager.InMemoryRepositoryManager
}

func (m failingCreateManager) Heroes(db dbx.DBTX) heroes.Repository {
	return failingCreate{m.InMemoryRepositoryManager.Heroes(db)}
}

type failingCreate struct{ heroes.Repository }

func (failingCreate) Create(context.Context, *models.HeroImage) (*models.HeroImage, error) {
	return nil, errCreate
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager, m *fakeMailer) *UserService {
	t.Helper()
	s, err := NewUserService(db, rm, m, testConfig(), logging.Nop())
	require.NoError(t, err)
	return s
}

func newHeroService(db *sql.DB, rm repomanager.RepositoryManager, st *fakeStorage) *HeroService {
	return NewHeroService(db, rm, st, logging.Nop())
}
