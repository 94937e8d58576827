package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	perrors "smart-pricing/pkg/errors"
)

// fencePattern matches a reply that is entirely one fenced code block with
// an optional language tag.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)\\r?\\n?\\s*```$")

// StripFence trims raw and, when the whole text is a fenced block, returns
// the trimmed block content. Text that is not fenced, or whose fence is
// empty, comes back trimmed and otherwise unchanged.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	if inner := strings.TrimSpace(m[1]); inner != "" {
		return inner
	}
	return text
}

// Parse strips an optional fence and decodes the analysis document. Any
// failure is a PARSE_MALFORMED error carrying the offending text.
func Parse(raw string) (Result, error) {
	text := StripFence(raw)

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return Result{}, perrors.NewMalformedError(text, err)
	}
	return res, nil
}
