package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a reachable server; set SMARTPRICING_TEST_POSTGRES_DSN to run.
func TestStore_Live(t *testing.T) {
	dsn := os.Getenv("SMARTPRICING_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SMARTPRICING_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	key := "smartpricing_test_" + t.Name()
	require.NoError(t, s.Put(ctx, key, []byte(`[]`)))
	require.NoError(t, s.Put(ctx, key, []byte(`{"version":1,"items":[]}`)))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1,"items":[]}`, string(got))

	_, ok, err = s.Get(ctx, key+"_absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
