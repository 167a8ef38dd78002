package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedHistory struct {
	Vendor string  `json:"vendor"`
	Rate   float64 `json:"rate"`
}

func TestSetJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)
	ctx := context.Background()

	mock.ExpectSet("vendor:acme", []byte(`{"vendor":"acme","rate":12.5}`), time.Minute).SetVal("OK")

	require.NoError(t, client.SetJSON(ctx, "vendor:acme", cachedHistory{Vendor: "acme", Rate: 12.5}, time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("vendor:acme").SetVal(`{"vendor":"acme","rate":12.5}`)

		var got cachedHistory
		require.NoError(t, client.GetJSON(ctx, "vendor:acme", &got))
		assert.Equal(t, cachedHistory{Vendor: "acme", Rate: 12.5}, got)
	})

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet("vendor:none").RedisNil()

		var got cachedHistory
		assert.ErrorIs(t, client.GetJSON(ctx, "vendor:none", &got), ErrCacheMiss)
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectGet("vendor:acme").SetErr(errors.New("connection reset"))

		var got cachedHistory
		err := client.GetJSON(ctx, "vendor:acme", &got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCacheMiss)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOperations(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)
	ctx := context.Background()

	mock.ExpectSAdd("domains", "a.com", "b.com").SetVal(2)
	mock.ExpectSMembers("domains").SetVal([]string{"a.com", "b.com"})
	mock.ExpectSIsMember("domains", "a.com").SetVal(true)
	mock.ExpectSRem("domains", "a.com").SetVal(1)
	mock.ExpectDel("domains").SetVal(1)

	added, err := client.AddToSet(ctx, "domains", "a.com", "b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	members, err := client.SetMembers(ctx, "domains")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.com", "b.com"}, members)

	ok, err := client.IsMember(ctx, "domains", "a.com")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := client.RemoveFromSet(ctx, "domains", "a.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, client.Delete(ctx, "domains"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmptySetArgumentsSkipRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewFromClient(db)

	n, err := client.AddToSet(context.Background(), "domains")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = client.RemoveFromSet(context.Background(), "domains")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
