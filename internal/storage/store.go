package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// URLPrefix is the public path the stored files are served under.
	URLPrefix = "/uploads"

	fetchTimeout = 30 * time.Second
)

// Store persists product and avatar images under a flat local directory and
// hands back relative URLs for them.
type Store struct {
	dir    string
	client *http.Client
}

// NewStore creates the uploads directory if needed and returns a Store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:    dir,
		client: &http.Client{Timeout: fetchTimeout},
	}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// SaveUpload persists a client-uploaded file under a generated unique name,
// preserving the original extension, and returns its relative URL.
func (s *Store) SaveUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uniqueName(filepath.Ext(file.Filename))
	dest := filepath.Join(s.dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}

	logrus.WithField("file", name).Info("stored uploaded image")
	return URLPrefix + "/" + name, nil
}

// FetchRemote downloads imageURL into the store and returns the relative URL
// of the local copy. Network errors, non-success statuses and write errors
// all fail the call; a partially written file never survives an error.
func (s *Store) FetchRemote(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", downloadError(err.Error())
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", downloadError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", downloadError(fmt.Sprintf("unexpected status %s", resp.Status))
	}

	name := uniqueName(extFromURL(imageURL))
	dest := filepath.Join(s.dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", downloadError(err.Error())
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", downloadError(err.Error())
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", downloadError(err.Error())
	}

	logrus.WithFields(logrus.Fields{"file": name, "source": imageURL}).Info("downloaded remote image")
	return URLPrefix + "/" + name, nil
}

// uniqueName generates a collision-free filename for the flat uploads
// directory. The nanosecond timestamp keeps concurrent requests apart.
func uniqueName(ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("image-%d%s", time.Now().UnixNano(), ext)
}

// extFromURL derives a file extension from the URL path, ignoring query
// parameters. Empty when the path carries no extension.
func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

func downloadError(reason string) error {
	return fmt.Errorf("Error downloading image: %s", reason)
}
