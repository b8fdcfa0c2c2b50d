package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maastricht-university/clip-sentiment/clients"
)

// IntenseThreshold is the |sentiment| above which a line is an emotional peak.
const IntenseThreshold = 0.7

// Point is a segment placed on the timeline.
type Point struct {
	clients.Segment
	Seconds int `json:"seconds"`
}

// TimestampSeconds parses "M:SS" as minutes*60 + seconds. Anything malformed
// yields 0 so the chart stays renderable.
func TimestampSeconds(ts string) int {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 2 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds < 0 {
		return 0
	}
	return minutes*60 + seconds
}

// FormatClock renders seconds as "M:SS".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ToChartSeries places every segment on the timeline, preserving order.
func ToChartSeries(segs []clients.Segment) []Point {
	out := make([]Point, 0, len(segs))
	for _, s := range segs {
		out = append(out, Point{Segment: s, Seconds: TimestampSeconds(s.Timestamp)})
	}
	return out
}

// AverageSentiment is the arithmetic mean, NaN for no segments. Callers show
// an empty state instead of the NaN.
func AverageSentiment(segs []clients.Segment) float64 {
	if len(segs) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, s := range segs {
		total += s.Sentiment
	}
	return total / float64(len(segs))
}

// IsIntense reports whether a score is an emotional peak.
func IsIntense(score float64) bool { return math.Abs(score) > IntenseThreshold }

// IntenseMoments keeps the segments with |sentiment| > IntenseThreshold, in
// their original order.
func IntenseMoments(segs []clients.Segment) []clients.Segment {
	var out []clients.Segment
	for _, s := range segs {
		if IsIntense(s.Sentiment) {
			out = append(out, s)
		}
	}
	return out
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
