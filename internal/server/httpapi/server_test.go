package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/herostore/internal/logging"
	"github.com/dmitrijs2005/herostore/internal/server/config"
	"github.com/dmitrijs2005/herostore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/dmitrijs2005/herostore/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type memMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *memMailer) SendVerificationCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = code
	return nil
}

func (m *memMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, folder, filename, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := "http://minio.test/media/" + storage.ObjectKey(folder, storage.ObjectName(filename))
	if _, ok := m.objects[u]; ok {
		return "", storage.ErrDuplicateObject
	}
	m.objects[u] = body
	return u, nil
}

func (m *memStorage) Delete(_ context.Context, _ string, u string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, u)
	return nil
}

type okPinger struct{ err error }

func (p okPinger) PingContext(context.Context) error { return p.err }

// ---- harness ----

type harness struct {
	t       *testing.T
	handler http.Handler
	mailer  *memMailer
	storage *memStorage
	mock    sqlmock.Sqlmock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rm := repomanager.NewInMemoryRepositoryManager()
	mailer := &memMailer{codes: map[string]string{}}
	st := &memStorage{objects: map[string][]byte{}}
	cfg := &config.Config{SecretKey: "test-secret", SigningAlgorithm: "HS256", AccessTokenValidityDuration: 30 * time.Minute}

	us, err := services.NewUserService(db, rm, mailer, cfg, logging.Nop())
	require.NoError(t, err)
	hs := services.NewHeroService(db, rm, st, logging.Nop())

	srv := NewHTTPServer(":0", logging.Nop(), us, hs, okPinger{}, opts)
	return &harness{t: t, handler: srv.Handler(), mailer: mailer, storage: st, mock: mock}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.do(req)
}

func (h *harness) file(method, path, token, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(h.t, err)
	_, err = part.Write(content)
	require.NoError(h.t, err)
	require.NoError(h.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return h.do(req)
}

func (h *harness) login(username, password string) *httptest.ResponseRecorder {
	h.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

// signup registers and verifies a user and returns an access token.
func (h *harness) signup(username, email string) string {
	h.t.Helper()
	rec := h.json(http.MethodPost, "/admin/register", "", map[string]string{"username": username, "email": email, "password": "pw"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.json(http.MethodPost, "/admin/verify/email", "", map[string]string{"username": username, "code": h.mailer.code(email)})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.login(username, "pw")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	var tok tokenView
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &tok))
	return tok.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}
