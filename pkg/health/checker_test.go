package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCheckerConfig(t *testing.T) {
	assert.Equal(t, 2*time.Second, DefaultCheckerConfig().Timeout)
}

func TestDatabaseChecker(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		err := DatabaseChecker(nil)(context.Background())
		require.Error(t, err)
		assert.Equal(t, "database connection is nil", err.Error())
	})

	t.Run("ping succeeds", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		assert.NoError(t, DatabaseChecker(db)(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.Error(t, DatabaseChecker(db)(context.Background()))
	})
}

func TestRedisChecker(t *testing.T) {
	client, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, RedisChecker(client)(context.Background()))

	mock.ExpectPing().SetErr(errors.New("redis down"))
	assert.Error(t, RedisChecker(client)(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunAppliesTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	healthy, results := Run(context.Background(), CheckerConfig{Timeout: 10 * time.Millisecond}, map[string]Check{
		"slow": slow,
		"ok":   func(context.Context) error { return nil },
	})

	assert.False(t, healthy)
	assert.Equal(t, "healthy", results["ok"])
	assert.Contains(t, results["slow"], "unhealthy")
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantBody   string
	}{
		{"no checks", nil, http.StatusOK, "healthy"},
		{"all healthy", map[string]Check{"database": func(context.Context) error { return nil }}, http.StatusOK, "healthy"},
		{"one failing", map[string]Check{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("down") },
		}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/healthz", Handler("forensics-api", "1.0.0", DefaultCheckerConfig(), tt.checks))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			assert.Equal(t, "forensics-api", resp.Service)
		})
	}
}
