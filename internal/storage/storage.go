// Package storage persists uploaded media on local disk or S3-compatible
// object storage.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"

	"yatube/internal/config"
)

type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
	BulkUpload(context.Context, []*UploadObject) ([]*UploadResponse, error)
	// URL maps a stored key to the address browsers fetch it from.
	URL(key string) string
}

type UploadObject struct {
	Prefix   string
	FileName string
	Mime     string
	Data     []byte
}

type UploadResponse struct {
	URL string
	Key string
}

// New returns the backend selected by MEDIA_BACKEND.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.MediaBackend {
	case "s3":
		return NewS3Storage(S3Configs{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	case "local", "":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^-\w.]`)

// SanitizeFileName keeps the base name of an upload and strips anything
// that is not a letter, digit, dash, underscore or dot.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "upload"
	}
	return name
}

// ObjectKey is where an object is stored: <prefix>/<content hash>_<file name>.
// Identical uploads land on the same key; the key always ends with the
// sanitized file name.
func ObjectKey(object *UploadObject) string {
	sum := sha256.Sum256(object.Data)
	name := hex.EncodeToString(sum[:6]) + "_" + SanitizeFileName(object.FileName)
	prefix := strings.Trim(object.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
