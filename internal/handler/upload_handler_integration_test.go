package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/testutil"
	"github.com/reelscore/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartRequest(t *testing.T, field, filename string, content []byte, token string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	server := newTestServer(t, testDB, nil, nil)
	alice := testutil.DefaultTestUser(t, testDB.DB)
	token := tokenFor(t, alice)

	t.Run("stores png under a generated name", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, multipartRequest(t, "file", "../../poster.png", pngHeader, token))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		response := decode(t, w)
		name := response["filename"].(string)
		assert.Equal(t, ".png", filepath.Ext(name))
		assert.NotContains(t, name, "poster")
		assert.Equal(t, "/uploads/"+name, response["url"])

		stored, err := os.ReadFile(filepath.Join(server.uploadDir, name))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, stored)

		w = httptest.NewRecorder()
		server.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		for _, filename := range []string{"poster.jpg", "script.svg", "notes.txt", "noext"} {
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, multipartRequest(t, "file", filename, pngHeader, token))
			assert.Equal(t, http.StatusBadRequest, w.Code, filename)
		}
	})

	t.Run("rejects content that is not the claimed image", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, multipartRequest(t, "file", "poster.gif", []byte("<html>hi</html>"), token))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "File content does not match its extension", decode(t, w)["message"])
	})

	t.Run("requires file field", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, multipartRequest(t, "image", "poster.png", pngHeader, token))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No file uploaded", decode(t, w)["message"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, multipartRequest(t, "file", "poster.png", pngHeader, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	server := newTestServer(t, testDB, nil, nil)

	w := server.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
