package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverage(t *testing.T) {
	assert.Equal(t, 1.0, Coverage(0, 0))
	assert.Equal(t, 0.5, Coverage(1, 2))
	assert.Equal(t, 0.0, Coverage(0, 3))
	assert.Equal(t, 1.0, Coverage(5, 4), "clamped")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "cao", Level(1))
	assert.Equal(t, "khá", Level(0.8))
	assert.Equal(t, "trung bình", Level(0.6))
	assert.Equal(t, "thấp", Level(0.2))
}
