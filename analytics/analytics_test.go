package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(ts, speaker string, score float64, emotion string) clients.Segment {
	return clients.Segment{Timestamp: ts, Speaker: speaker, Text: "line at " + ts, Sentiment: score, Emotion: emotion}
}

func scores(vals ...float64) []clients.Segment {
	out := make([]clients.Segment, 0, len(vals))
	for _, v := range vals {
		out = append(out, clients.Segment{Sentiment: v})
	}
	return out
}

func TestAverageSentiment(t *testing.T) {
	assert.InDelta(t, 1.0/6.0, AverageSentiment(scores(1.0, -0.5, 0.0)), 1e-12)
	assert.True(t, math.IsNaN(AverageSentiment(nil)))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		want  Class
	}{
		{0.6, Positive},
		{0.5, SlightlyPositive},
		{0.0, SlightlyPositive},
		{-0.01, SlightlyNegative},
		{-0.5, Negative},
		{-0.9, Negative},
		{1.7, Positive},
		{-3, Negative},
		{math.NaN(), Negative},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "score %v", tc.score)
	}
}

func TestClassColors(t *testing.T) {
	assert.Equal(t, "#4CAF50", SentimentColor(0.85))
	assert.Equal(t, "#8BC34A", SentimentColor(0.45))
	assert.Equal(t, "#FFC107", SentimentColor(-0.25))
	assert.Equal(t, "#F44336", SentimentColor(-0.78))
	assert.Equal(t, "Slightly negative", SlightlyNegative.Label())
}

func TestIntenseMomentsKeepsOrder(t *testing.T) {
	segs := []clients.Segment{
		seg("0:00", "A", 0.8, "joy"),
		seg("0:10", "B", 0.3, "calm"),
		seg("0:20", "A", -0.75, "anger"),
		seg("0:30", "B", -0.2, "doubt"),
	}
	got := IntenseMoments(segs)
	require.Len(t, got, 2)
	assert.Equal(t, segs[0], got[0])
	assert.Equal(t, segs[2], got[1])

	assert.Empty(t, IntenseMoments(scores(0.7, -0.7)), "threshold is strict")
}

func TestTimestampSeconds(t *testing.T) {
	assert.Equal(t, 125, TimestampSeconds("2:05"))
	assert.Equal(t, 0, TimestampSeconds("bad"))
	assert.Equal(t, 0, TimestampSeconds(""))
	assert.Equal(t, 0, TimestampSeconds("1:xx"))
	assert.Equal(t, 0, TimestampSeconds("-1:05"))
	assert.Equal(t, 0, TimestampSeconds("1:02:03"))
	assert.Equal(t, 62, TimestampSeconds(" 1:02 "))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "2:00", FormatClock(120))
	assert.Equal(t, "1:05", FormatClock(65))
	assert.Equal(t, "0:00", FormatClock(-4))
}

func TestToChartSeries(t *testing.T) {
	segs := []clients.Segment{seg("0:12", "B", 0.45, "confidence"), seg("oops", "A", -0.1, "")}
	series := ToChartSeries(segs)
	require.Len(t, series, 2)
	assert.Equal(t, 12, series[0].Seconds)
	assert.Equal(t, segs[0], series[0].Segment)
	assert.Equal(t, 0, series[1].Seconds)

	raw, err := json.Marshal(series[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"0:12","speaker":"B","text":"line at 0:12","sentiment":0.45,"emotion":"confidence","seconds":12}`, string(raw))
}

func TestRowHighlight(t *testing.T) {
	neg := RowHighlight(-0.5)
	assert.Equal(t, "244, 67, 54", neg.RGB)
	assert.InDelta(t, 0.15, neg.Opacity, 1e-12)

	zero := RowHighlight(0)
	assert.Equal(t, "76, 175, 80", zero.RGB)
	assert.Zero(t, zero.Opacity)

	assert.Equal(t, "rgba(76, 175, 80, 0.3)", RowHighlight(1).CSS())
	assert.InDelta(t, 85.0, BarWidth(-0.85), 1e-9)
	assert.Equal(t, 100.0, BarWidth(4))
}

func TestHighlightTintAgreesWithClass(t *testing.T) {
	for _, s := range []float64{-1, -0.6, -0.5, -0.01, 0, 0.01, 0.5, 0.9} {
		red := RowHighlight(s).RGB == negativeRGB
		negClass := Classify(s) == SlightlyNegative || Classify(s) == Negative
		assert.Equal(t, negClass, red, "score %v", s)
	}
}

func TestSpeakersAndEmotions(t *testing.T) {
	segs := []clients.Segment{
		seg("0:00", "Character A", -0.65, "confusion"),
		seg("0:12", "Character B", 0.45, "confidence"),
		seg("0:18", "Character A", -0.78, "frustration"),
		seg("0:25", "Character B", 0.32, "confidence"),
		seg("0:32", "Character A", 0.58, ""),
	}

	sp := Speakers(segs)
	require.Len(t, sp, 2)
	assert.Equal(t, "Character A", sp[0].Speaker)
	assert.Equal(t, 3, sp[0].Lines)
	assert.InDelta(t, 0.6, sp[0].Share, 1e-12)
	assert.InDelta(t, (-0.65-0.78+0.58)/3, sp[0].MeanSentiment, 1e-12)
	assert.Equal(t, 2, sp[1].Lines)

	em := Emotions(segs)
	assert.Equal(t, []EmotionCount{{"confusion", 1}, {"confidence", 2}, {"frustration", 1}}, em)

	assert.Nil(t, Speakers(nil))
}

func TestDerive(t *testing.T) {
	res := &clients.AnalysisResult{
		Filename: "scene",
		Duration: 74,
		Segments: []clients.Segment{
			seg("0:00", "A", -0.65, "confusion"),
			seg("0:40", "B", 0.85, "gratitude"),
			seg("1:10", "B", 0.15, "reassurance"),
		},
	}

	v := Derive(res)
	assert.False(t, v.Empty())
	assert.Equal(t, "scene", v.Summary.Filename)
	assert.Equal(t, "1:14", v.Summary.Duration)
	assert.Equal(t, 3, v.Summary.Dialogues)
	assert.True(t, v.Summary.HasAverage)
	assert.InDelta(t, (-0.65+0.85+0.15)/3, v.Summary.AverageSentiment, 1e-12)
	assert.Equal(t, SlightlyPositive, v.Summary.AverageClass)
	assert.Equal(t, 1, v.Summary.EmotionalPeaks)

	require.Len(t, v.Series, 3)
	assert.Equal(t, []int{0, 40, 70}, []int{v.Series[0].Seconds, v.Series[1].Seconds, v.Series[2].Seconds})
	require.Len(t, v.Peaks, 1)
	assert.Equal(t, 40, v.Peaks[0].Seconds)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, Negative, v.Rows[0].Class)
	assert.Equal(t, "#F44336", v.Rows[0].Color)
	assert.True(t, v.Rows[1].Intense)

	_, err := json.Marshal(v)
	require.NoError(t, err)
}

func TestDeriveEmptyHasNoNaN(t *testing.T) {
	v := Derive(&clients.AnalysisResult{Filename: "silent"})
	assert.True(t, v.Empty())
	assert.False(t, v.Summary.HasAverage)
	assert.Zero(t, v.Summary.AverageSentiment)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"has_average":false`)

	assert.True(t, Derive(nil).Empty())
}

func TestClassTextRoundTrip(t *testing.T) {
	var c Class
	require.NoError(t, c.UnmarshalText([]byte("slightly_negative")))
	assert.Equal(t, SlightlyNegative, c)
	assert.Error(t, c.UnmarshalText([]byte("meh")))
}
