package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchReportKey(t *testing.T) {
	tests := []struct {
		vendor, batch, file string
		expected            string
	}{
		{"LeadGen Pro", "2024-03", "results.csv", "vendors/leadgen-pro/batches/2024-03/results.csv"},
		{"../etc", "b/../1", "../../summary.txt", "vendors/etc/batches/b-..-1/summary.txt"},
		{"", "", "summary.csv", "vendors/unknown/batches/unknown/summary.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, BatchReportKey(tt.vendor, tt.batch, tt.file))
		})
	}
}

func TestGetMimeTypeFromExtension(t *testing.T) {
	assert.Equal(t, "text/csv", GetMimeTypeFromExtension("results.CSV"))
	assert.Equal(t, "text/plain; charset=utf-8", GetMimeTypeFromExtension("summary.txt"))
	assert.Equal(t, "application/octet-stream", GetMimeTypeFromExtension("archive"))
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Provider: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), config.StorageConfig{Provider: "gcs"})
	assert.Error(t, err)
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := BatchReportKey("acme", "b1", "summary.txt")
	body := "Fraud percentage: 20.0%"

	res, err := s.Upload(ctx, key, strings.NewReader(body), int64(len(body)), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), res.Size)
	assert.True(t, strings.HasPrefix(res.URL, "file://"))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)

	_, err = NewLocalStorage("")
	assert.Error(t, err)
}

func TestS3StorageAgainstFakeEndpoint(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	var mu sync.Mutex
	objects := map[string][]byte{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = data
			w.WriteHeader(http.StatusOK)
		case http.MethodHead:
			if _, ok := objects[r.URL.Path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	s, err := NewS3Storage(ctx, S3Config{
		Bucket:    "reports",
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)

	key := BatchReportKey("acme", "b1", "results.csv")
	body := []byte("name,email\n")

	res, err := s.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/reports/"+key, res.URL)

	mu.Lock()
	assert.Contains(t, objects, "/reports/"+key)
	mu.Unlock()

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "vendors/acme/batches/missing/results.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}
