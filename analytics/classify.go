package analytics

import (
	"fmt"
	"math"
)

// Class buckets a sentiment score for display.
type Class int

const (
	Positive Class = iota
	SlightlyPositive
	SlightlyNegative
	Negative
)

func (c Class) String() string {
	switch c {
	case Positive:
		return "positive"
	case SlightlyPositive:
		return "slightly_positive"
	case SlightlyNegative:
		return "slightly_negative"
	default:
		return "negative"
	}
}

// Label is the human-facing name of the class.
func (c Class) Label() string {
	switch c {
	case Positive:
		return "Positive"
	case SlightlyPositive:
		return "Slightly positive"
	case SlightlyNegative:
		return "Slightly negative"
	default:
		return "Negative"
	}
}

// Color is the fixed display color of the class.
func (c Class) Color() string {
	switch c {
	case Positive:
		return "#4CAF50"
	case SlightlyPositive:
		return "#8BC34A"
	case SlightlyNegative:
		return "#FFC107"
	default:
		return "#F44336"
	}
}

func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Class) UnmarshalText(b []byte) error {
	for _, k := range []Class{Positive, SlightlyPositive, SlightlyNegative, Negative} {
		if k.String() == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("analytics: unknown sentiment class %q", b)
}

// Classify maps any score, in range or not, to a class. Zero counts as
// slightly positive, matching the green row tint every non-negative score
// gets. NaN fails every comparison and lands on Negative.
func Classify(score float64) Class {
	switch {
	case score > 0.5:
		return Positive
	case score >= 0:
		return SlightlyPositive
	case score > -0.5:
		return SlightlyNegative
	default:
		return Negative
	}
}

// SentimentColor is Classify(score).Color().
func SentimentColor(score float64) string { return Classify(score).Color() }

// Highlight is the tint applied behind a dialogue row.
type Highlight struct {
	RGB     string  `json:"rgb"`
	Opacity float64 `json:"opacity"`
}

const (
	// HighlightScale converts |sentiment| into row opacity.
	HighlightScale = 0.3

	negativeRGB = "244, 67, 54"
	positiveRGB = "76, 175, 80"
)

// RowHighlight tints negative rows red and the rest green, with opacity
// |score| * HighlightScale. The sign split is the same one Classify uses at 0.
func RowHighlight(score float64) Highlight {
	mag := magnitude(score)
	rgb := positiveRGB
	if score < 0 {
		rgb = negativeRGB
	}
	return Highlight{RGB: rgb, Opacity: mag * HighlightScale}
}

// CSS renders the highlight as an rgba() color.
func (h Highlight) CSS() string {
	return "rgba(" + h.RGB + ", " + formatFloat(h.Opacity) + ")"
}

// BarWidth is the sentiment bar length in percent of the cell.
func BarWidth(score float64) float64 { return magnitude(score) * 100 }

// magnitude is |score| clamped to [0, 1]; NaN counts as 0.
func magnitude(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(math.Abs(score), 1)
}
