package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	items := []PricedItem{item("Ván MDF", "m2", 250000), item("Gỗ MDF", "tấm", 410000)}

	data, err := encodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	got, err := decodeItems(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range items {
		assert.Equal(t, items[i].Name, got[i].Name)
		assert.True(t, items[i].Price.Equal(got[i].Price))
	}
}

func TestDecodeItems_Tolerated(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]", `{"version":1,"items":null}`} {
		got, err := decodeItems([]byte(raw))
		require.NoError(t, err, "%q", raw)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestDecodeItems_Rejected(t *testing.T) {
	for _, raw := range []string{
		`"text"`,
		`{"version":2,"items":[]}`,
		`[{"name":"A","unit":"m2","price":0}]`,
		`[{"name":"A","unit":"m2","price":"abc"}]`,
		`[1,2]`,
	} {
		_, err := decodeItems([]byte(raw))
		assert.Error(t, err, "%q", raw)
	}
}
