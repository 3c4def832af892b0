package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var png = []byte("\x89PNG\r\n\x1a\nfake")

func (h *harness) upload(token, filename string) uploadView {
	h.t.Helper()
	rec := h.file(http.MethodPost, "/hero/upload/", token, filename, "image/png", png)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[uploadView](h.t, rec)
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.signup("alice", "alice@example.com")

	t.Run("success", func(t *testing.T) {
		rec := h.file(http.MethodPost, "/hero/upload/", token, "my hero.png", "image/png", png)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		got := decode[uploadView](t, rec)
		assert.NotZero(t, got.ID)
		assert.NotZero(t, got.UserID)
		assert.False(t, got.Active)
		assert.Equal(t, "http://minio.test/media/media/hero/my%20hero.png", got.ImageURL)
		assert.Contains(t, h.storage.objects, got.ImageURL)
	})

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		detail      string
	}{
		{"extension", "virus.exe", "image/png", png, "File type not allowed"},
		{"no extension", "README", "image/png", png, "File type not allowed"},
		{"mime", "pic.png", "application/zip", png, "Invalid file content"},
		{"empty", "pic.png", "image/png", nil, "File content is empty"},
		{"duplicate", "my hero.png", "image/png", png, "Duplicate file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.file(http.MethodPost, "/hero/upload/", token, tt.filename, tt.contentType, tt.content)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.detail, detail(t, rec))
		})
	}

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte{0}, services.MaxUploadSize+1)
		rec := h.file(http.MethodPost, "/hero/upload/", token, "big.png", "image/png", big)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File too large", detail(t, rec))
	})

	t.Run("missing file", func(t *testing.T) {
		rec := h.json(http.MethodPost, "/hero/upload/", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestListAndGetImages(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.signup("alice", "alice@example.com")
	bob := h.signup("bob", "bob@example.com")

	rec := h.json(http.MethodGet, "/hero/", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	first := h.upload(alice, "a.png")
	second := h.upload(alice, "b.jpg")
	h.upload(bob, "c.jpeg")

	list := decode[[]imageView](t, h.json(http.MethodGet, "/hero/", alice, nil))
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	rec = h.json(http.MethodGet, fmt.Sprintf("/hero/%d", first.ID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, imageView{ID: first.ID, ImageURL: first.ImageURL}, decode[imageView](t, rec))

	rec = h.json(http.MethodGet, fmt.Sprintf("/hero/%d", first.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Image not found", detail(t, rec))

	rec = h.json(http.MethodGet, "/hero/9999", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.json(http.MethodGet, "/hero/abc", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateImage(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.signup("alice", "alice@example.com")
	img := h.upload(token, "old.png")

	rec := h.file(http.MethodPut, fmt.Sprintf("/hero/%d", img.ID), token, "new.png", "image/png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[imageView](t, rec)
	assert.Equal(t, img.ID, got.ID)
	assert.Equal(t, "http://minio.test/media/media/hero/new.png", got.ImageURL)
	assert.NotContains(t, h.storage.objects, img.ImageURL)
	assert.Contains(t, h.storage.objects, got.ImageURL)

	rec = h.file(http.MethodPut, fmt.Sprintf("/hero/%d", img.ID), token, "new.gif", "image/gif", png)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File type not allowed", detail(t, rec))

	rec = h.file(http.MethodPut, "/hero/9999", token, "x.png", "image/png", png)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Image not found", detail(t, rec))
}

func TestDeleteImage(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.signup("alice", "alice@example.com")
	img := h.upload(token, "a.png")

	rec := h.json(http.MethodDelete, fmt.Sprintf("/hero/%d", img.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, img.ID, decode[imageView](t, rec).ID)
	assert.Empty(t, h.storage.objects)

	rec = h.json(http.MethodGet, fmt.Sprintf("/hero/%d", img.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.json(http.MethodDelete, fmt.Sprintf("/hero/%d", img.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Image not found", detail(t, rec))
}

func TestActivateImage(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.signup("alice", "alice@example.com")
	first := h.upload(token, "a.png")
	second := h.upload(token, "b.png")

	rec := h.json(http.MethodGet, "/hero/isactive/", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active images found", detail(t, rec))

	for _, img := range []uploadView{first, second} {
		h.mock.ExpectBegin()
		h.mock.ExpectCommit()

		rec = h.json(http.MethodPut, fmt.Sprintf("/hero/activate/%d", img.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, imageView{ID: img.ID, ImageURL: img.ImageURL, Active: true}, decode[imageView](t, rec))
	}

	list := decode[[]imageView](t, h.json(http.MethodGet, "/hero/", token, nil))
	require.Len(t, list, 2)
	assert.False(t, list[0].Active)
	assert.True(t, list[1].Active)

	rec = h.json(http.MethodGet, "/hero/isactive/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, second.ID, decode[imageView](t, rec).ID)

	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
	rec = h.json(http.MethodPut, "/hero/activate/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hero not found", detail(t, rec))

	rec = h.json(http.MethodPut, "/hero/activate/x", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestHeroFlow(t *testing.T) {
	h := newHarness(t, Options{})

	rec := h.json(http.MethodPost, "/admin/register", "", map[string]string{"username": "carol", "email": "carol@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.login("carol", "secret")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email not verified", detail(t, rec))

	code := h.mailer.code("carol@example.com")
	require.Len(t, code, 6)
	rec = h.json(http.MethodPost, "/admin/verify/email", "", map[string]string{"username": "carol", "code": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.login("carol", "secret")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode[tokenView](t, rec)
	assert.Equal(t, "bearer", tok.TokenType)

	img := h.upload(tok.AccessToken, "hero.jpg")

	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
	rec = h.json(http.MethodPut, fmt.Sprintf("/hero/activate/%d", img.ID), tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.json(http.MethodGet, "/hero/isactive/", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[imageView](t, rec)
	assert.Equal(t, img.ID, got.ID)
	assert.True(t, got.Active)
	assert.Equal(t, img.ImageURL, got.ImageURL)

	require.NoError(t, h.mock.ExpectationsWereMet())
}
