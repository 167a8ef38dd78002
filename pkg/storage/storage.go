package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/richxcame/lead-forensics/pkg/config"
)

// Provider represents a storage provider type
type Provider string

const (
	ProviderS3    Provider = "s3"
	ProviderLocal Provider = "local"
)

// UploadResult contains the result of an upload operation
type UploadResult struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Storage is where batch reports are archived
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// New builds the storage backend selected by the configuration
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch Provider(cfg.Provider) {
	case ProviderS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case ProviderLocal:
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}

var unsafeSegment = regexp.MustCompile(`[^a-z0-9._-]+`)

// SanitizeSegment turns a vendor name or batch identifier into a safe key segment
func SanitizeSegment(s string) string {
	s = unsafeSegment.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "unknown"
	}
	return s
}

// BatchReportKey builds the key of a report file for one vendor batch:
// vendors/{vendor}/batches/{batch}/{filename}
func BatchReportKey(vendor, batchID, filename string) string {
	return fmt.Sprintf("vendors/%s/batches/%s/%s",
		SanitizeSegment(vendor),
		SanitizeSegment(batchID),
		path.Base(filename),
	)
}

// GetMimeTypeFromExtension returns the MIME type for report file extensions
func GetMimeTypeFromExtension(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
