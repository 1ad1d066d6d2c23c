package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_FetchRemote(t *testing.T) {
	payload := []byte("fake image bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("stores remote image and returns relative url", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		assert.NoError(t, err)

		url, err := store.FetchRemote(context.Background(), server.URL+"/ok.png")
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, URLPrefix+"/image-"))
		assert.True(t, strings.HasSuffix(url, ".png"))

		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, URLPrefix+"/")))
		assert.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("non-success status fails and leaves no file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		assert.NoError(t, err)

		_, err = store.FetchRemote(context.Background(), server.URL+"/missing.png")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Error downloading image")

		entries, err := os.ReadDir(dir)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("unreachable host fails with download error", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		assert.NoError(t, err)

		_, err = store.FetchRemote(context.Background(), "http://127.0.0.1:1/none.jpg")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Error downloading image")

		entries, err := os.ReadDir(dir)
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestExtFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"plain extension", "https://cdn.example.com/photos/cat.png", ".png"},
		{"query parameters ignored", "https://cdn.example.com/cat.jpg?w=300&h=300", ".jpg"},
		{"no extension", "https://cdn.example.com/photos/cat", ""},
		{"unparseable url", "://not-a-url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extFromURL(tt.url))
		})
	}
}

func TestUniqueName(t *testing.T) {
	// Missing extensions default to .jpg, matching image URLs whose query
	// strings hide the real filename.
	assert.True(t, strings.HasSuffix(uniqueName(""), ".jpg"))
	assert.True(t, strings.HasSuffix(uniqueName(".webp"), ".webp"))
	assert.NotEqual(t, uniqueName(".png"), uniqueName(".png"))
}
