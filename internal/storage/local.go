package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage stores files under root and serves them from baseURL.
func NewLocalStorage(root, baseURL string) Storage {
	if baseURL == "" {
		baseURL = "/media/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &localStorage{root: root, baseURL: baseURL}
}

func (s *localStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + strings.TrimLeft(key, "/")
}

func (s *localStorage) Upload(ctx context.Context, object *UploadObject) (*UploadResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ObjectKey(object)
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	// Write then rename so readers never see a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(object.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	return &UploadResponse{URL: s.URL(key), Key: key}, nil
}

func (s *localStorage) BulkUpload(ctx context.Context, objects []*UploadObject) ([]*UploadResponse, error) {
	out := make([]*UploadResponse, 0, len(objects))
	for _, o := range objects {
		resp, err := s.Upload(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}
