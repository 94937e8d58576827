// Package confidence provides score math for how completely a quote is priced.
package confidence

// Thresholds for Level.
const (
	HighConfidence   = 0.95
	MediumConfidence = 0.80
	LowConfidence    = 0.60
)

// Coverage is the share of lines that found a catalog price, in [0, 1].
// A quote with no lines has nothing unpriced and scores 1.
func Coverage(matched, total int) float64 {
	if total <= 0 {
		return 1
	}
	return Clamp(float64(matched) / float64(total))
}

// Clamp ensures confidence is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Level names a score for display.
func Level(score float64) string {
	switch {
	case score >= HighConfidence:
		return "cao"
	case score >= MediumConfidence:
		return "khá"
	case score >= LowConfidence:
		return "trung bình"
	default:
		return "thấp"
	}
}
