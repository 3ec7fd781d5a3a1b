package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Configs struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the browser-facing base of the bucket. Defaults to
	// <Endpoint>/<Bucket>.
	PublicURL string
}

type s3Storage struct {
	uploader *s3manager.Uploader
	cfg      S3Configs
}

func NewS3Storage(cfg S3Configs) (Storage, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.DisableSSL = aws.Bool(strings.HasPrefix(cfg.Endpoint, "http://"))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}

	return &s3Storage{
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
	}, nil
}

func (s *s3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	base := strings.TrimRight(s.cfg.PublicURL, "/")
	if base == "" {
		endpoint := strings.TrimRight(s.cfg.Endpoint, "/")
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", s.cfg.Region)
		}
		base = endpoint + "/" + s.cfg.Bucket
	}
	return base + "/" + strings.TrimLeft(key, "/")
}

func (s *s3Storage) input(object *UploadObject, key string) *s3manager.UploadInput {
	return &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(object.Data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(object.Mime),
	}
}

func (s *s3Storage) Upload(ctx context.Context, object *UploadObject) (*UploadResponse, error) {
	key := ObjectKey(object)
	if _, err := s.uploader.UploadWithContext(ctx, s.input(object, key)); err != nil {
		return nil, fmt.Errorf("upload failed: %w, bucket %s, key %s", err, s.cfg.Bucket, key)
	}
	return &UploadResponse{URL: s.URL(key), Key: key}, nil
}

func (s *s3Storage) BulkUpload(ctx context.Context, objects []*UploadObject) ([]*UploadResponse, error) {
	batch := make([]s3manager.BatchUploadObject, 0, len(objects))
	out := make([]*UploadResponse, 0, len(objects))
	for _, o := range objects {
		key := ObjectKey(o)
		batch = append(batch, s3manager.BatchUploadObject{Object: s.input(o, key)})
		out = append(out, &UploadResponse{URL: s.URL(key), Key: key})
	}

	if err := s.uploader.UploadWithIterator(ctx, &s3manager.UploadObjectsIterator{
		Objects: batch,
	}); err != nil {
		return nil, err
	}
	return out, nil
}
