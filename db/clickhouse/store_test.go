package clickhouse

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Stable(t *testing.T) {
	a := contentHash([]byte(`[]`))
	assert.Len(t, a, 64)
	assert.Equal(t, a, contentHash([]byte(`[]`)))
	assert.NotEqual(t, a, contentHash([]byte(`[ ]`)))
}

// Requires a reachable server; set SMARTPRICING_TEST_CLICKHOUSE_HOST to run.
func TestStore_Live(t *testing.T) {
	host := os.Getenv("SMARTPRICING_TEST_CLICKHOUSE_HOST")
	if host == "" {
		t.Skip("SMARTPRICING_TEST_CLICKHOUSE_HOST not set")
	}
	cfg := DefaultConfig()
	cfg.Host = host
	if p, err := strconv.Atoi(os.Getenv("SMARTPRICING_TEST_CLICKHOUSE_PORT")); err == nil {
		cfg.Port = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewStore(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	key := "smartpricing_test_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	require.NoError(t, s.Put(ctx, key, []byte(`[]`)))
	require.NoError(t, s.Put(ctx, key, []byte(`{"version":1,"items":[]}`)))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1,"items":[]}`, string(got))
}
