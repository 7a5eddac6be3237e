package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/collegebuddy/api/config"
	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("file storage is not configured")
	ErrInvalidFile   = errors.New("invalid file")
)

// Store persists uploaded files and returns their public URL
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SpacesConfig holds configuration for the Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// ConfigFromEnv reads the DO_SPACES_* settings
func ConfigFromEnv(env *config.EnviornmentVariable) SpacesConfig {
	cfg := SpacesConfig{
		AccessKey: env.DO_SPACES_ACCESS_KEY,
		SecretKey: env.DO_SPACES_SECRET_KEY,
		Bucket:    env.DO_SPACES_BUCKET,
		Region:    env.DO_SPACES_REGION,
		Endpoint:  env.DO_SPACES_ENDPOINT,
		CDNURL:    strings.TrimSuffix(env.DO_SPACES_CDN_ENDPOINT, "/"),
	}
	if cfg.Endpoint == "" && cfg.Region != "" {
		cfg.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", cfg.Region)
	}
	return cfg
}

// IsConfigured reports whether credentials and a bucket are present
func (c SpacesConfig) IsConfigured() bool {
	return c.AccessKey != "" && c.SecretKey != "" && c.Bucket != "" && c.Region != ""
}

// SpacesStore stores files in DigitalOcean Spaces through the S3 API
type SpacesStore struct {
	s3       s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesStore creates a Spaces backed store
func NewSpacesStore(cfg SpacesConfig) (*SpacesStore, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String("https://" + strings.TrimPrefix(cfg.Endpoint, "https://")),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesStore{
		s3:       s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: strings.TrimPrefix(cfg.Endpoint, "https://"),
		cdnURL:   cfg.CDNURL,
	}, nil
}

// Put uploads a publicly readable object
func (s *SpacesStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.URL(key), nil
}

// Delete removes an object
func (s *SpacesStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for a key, preferring the CDN
func (s *SpacesStore) URL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// Disabled is used when no storage is configured; uploads fail with ErrNotConfigured
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return nil }

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NoteKey builds a collision free object key for an uploaded note
func NoteKey(subjectID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "-"), "-")
	if base == "" {
		base = "notes"
	}
	if len(base) > 60 {
		base = base[:60]
	}
	return fmt.Sprintf("notes/%d/%s_%s%s", subjectID, uuid.NewString()[:8], base, ext)
}
