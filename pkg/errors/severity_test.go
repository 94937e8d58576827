package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPricingError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("analyze: %w", NewMalformedError("sorry, I cannot help", stderrors.New("invalid character")))

	assert.True(t, stderrors.Is(err, ErrParseMalformed))
	assert.False(t, stderrors.Is(err, ErrGeneratorCallFailed))
}

func TestPricingError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("quota exceeded")
	err := NewGeneratorCallError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "GENERATOR_CALL_FAILED")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewMalformedError_TruncatesDetail(t *testing.T) {
	long := strings.Repeat("ả", 500)
	err := NewMalformedError(long, nil)

	assert.Equal(t, maxSnippet+1, len([]rune(err.Detail)))
	assert.True(t, strings.HasSuffix(err.Detail, "…"))
}

func TestTruncate_ShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abc", 2))
}

func TestUserMessage_DistinguishesFailureClasses(t *testing.T) {
	transport := UserMessage(NewGeneratorCallError(stderrors.New("dial tcp")))
	malformed := UserMessage(NewMalformedError("x", nil))
	timeout := UserMessage(NewGeneratorTimeoutError(5*time.Second, nil))

	assert.NotEqual(t, transport, malformed)
	assert.NotEqual(t, transport, timeout)
	assert.Equal(t, msgEmptyDescription, UserMessage(NewEmptyDescriptionError()))
	assert.Equal(t, msgUnknown, UserMessage(stderrors.New("plain")))
}

func TestIsWarning(t *testing.T) {
	assert.True(t, IsWarning(NewPersistError("k", nil)))
	assert.True(t, IsWarning(NewStaleResponseError(1, 2)))
	assert.False(t, IsWarning(NewInvalidItemError("price")))
	assert.False(t, IsWarning(stderrors.New("plain")))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
