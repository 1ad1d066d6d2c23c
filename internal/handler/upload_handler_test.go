package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	apperrors "tienda/internal/errors"
	"tienda/internal/storage"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newUploadHandler(t *testing.T) (*UploadHandler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	assert.NoError(t, err)
	return NewUploadHandler(store), dir
}

func TestUploadHandler_Upload(t *testing.T) {
	e := echo.New()
	handler, dir := newUploadHandler(t)

	t.Run("stores the uploaded file", func(t *testing.T) {
		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("image", "product.png")
		assert.NoError(t, err)
		part.Write([]byte("png bytes"))
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler.Upload(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp UploadResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.URL, "/uploads/image-"))
		assert.True(t, strings.HasSuffix(resp.URL, ".png"))

		_, err = os.Stat(filepath.Join(dir, filepath.Base(resp.URL)))
		assert.NoError(t, err)
	})

	t.Run("missing file field is a client error", func(t *testing.T) {
		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		writer.WriteField("comment", "no image here")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Upload(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestUploadHandler_UploadFromURL(t *testing.T) {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	handler, _ := newUploadHandler(t)

	t.Run("missing url is a client error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload-url", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.UploadFromURL(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("unreachable url is a server error with the download message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload-url",
			strings.NewReader(`{"imageUrl":"http://127.0.0.1:1/img.jpg"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.UploadFromURL(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)

		resp, ok := httpErr.Message.(apperrors.ErrorResponse)
		assert.True(t, ok)
		assert.Contains(t, resp.Error, "Error downloading image")
	})
}
