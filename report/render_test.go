package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/clip-sentiment/analytics"
	"github.com/maastricht-university/clip-sentiment/clients"
)

func sample() analytics.View {
	return analytics.Derive(&clients.AnalysisResult{
		Filename: "meeting.mp4",
		Duration: 74,
		Segments: []clients.Segment{
			{Timestamp: "0:05", Speaker: "Alice", Text: "Hello everyone.", Sentiment: 0.2, Emotion: "neutral"},
			{Timestamp: "0:21", Speaker: "Bob", Text: "This is terrible news.", Sentiment: -0.8, Emotion: "anger"},
			{Timestamp: "0:40", Speaker: "Alice", Text: "Thank you so much!", Sentiment: 0.85, Emotion: "gratitude"},
		},
	})
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "meeting.mp4")
	assert.Contains(t, out, "1:14")
	assert.Contains(t, out, "Dialogues:         3")
	assert.Contains(t, out, "Average Sentiment: 0.08")
	assert.Contains(t, out, "Emotional Peaks:   2")
	assert.Contains(t, out, "This is terrible news.")
	assert.Contains(t, out, "-0.80")
	assert.Contains(t, out, "Emotions: neutral 1, anger 1, gratitude 1")
	assert.Contains(t, out, `"Thank you so much!"`)
	assert.NotContains(t, out, "\x1b[", "plain output has no escapes")
	assert.NotContains(t, out, NoResults)
}

func TestRenderTimelineSides(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), Options{}))

	var neg, pos string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "│") && strings.HasSuffix(line, "-0.80") {
			neg = line
		}
		if strings.Contains(line, "│") && strings.HasSuffix(line, "0.85") {
			pos = line
		}
	}
	require.NotEmpty(t, neg)
	require.NotEmpty(t, pos)

	negLeft, _, _ := strings.Cut(neg, "│")
	assert.Contains(t, negLeft, "█")
	_, posRight, _ := strings.Cut(pos, "│")
	assert.Contains(t, posRight, "█")
	assert.Contains(t, posRight, "*")
}

func TestRenderColorized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample(), Options{Colorize: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, analytics.Derive(nil), Options{}))
	assert.Contains(t, buf.String(), NoResults)
	assert.NotContains(t, buf.String(), "Dialogue Breakdown")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, sample()))

	var got analytics.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), `"class": "negative"`)
}

func TestShouldColorize(t *testing.T) {
	assert.False(t, ShouldColorize(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ShouldColorize(f))
}
