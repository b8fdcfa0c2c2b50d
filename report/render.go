// Package report renders a derived analysis view for a terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/maastricht-university/clip-sentiment/analytics"
)

// NoResults is printed in place of a report with nothing to chart.
const NoResults = "No results available. Please analyze a video first."

const (
	timelineHalfWidth = 20
	dialogueMaxWidth  = 60
)

type Options struct {
	Colorize bool
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render writes the summary, timeline, dialogue table and highlights.
func Render(w io.Writer, v analytics.View, opts Options) error {
	var b strings.Builder
	b.WriteString(section("Sentiment Analysis Results", opts))
	if v.Empty() {
		b.WriteString(NoResults + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	writeSummary(&b, v.Summary, opts)
	b.WriteString("\n" + section("Sentiment Timeline", opts))
	writeTimeline(&b, v.Series, opts)
	b.WriteString("\n" + section("Dialogue Breakdown", opts))
	b.WriteString(dialogueTable(v.Rows, opts) + "\n")
	if len(v.Speakers) > 0 {
		b.WriteString("\n" + section("Speakers", opts))
		b.WriteString(speakerTable(v.Speakers, opts) + "\n")
	}
	if len(v.Emotions) > 0 {
		parts := make([]string, 0, len(v.Emotions))
		for _, e := range v.Emotions {
			parts = append(parts, fmt.Sprintf("%s %d", e.Emotion, e.Count))
		}
		fmt.Fprintf(&b, "  Emotions: %s\n", strings.Join(parts, ", "))
	}
	if len(v.Peaks) > 0 {
		b.WriteString("\n" + section("Emotional Highlights", opts))
		writeHighlights(&b, v.Peaks, opts)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v analytics.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func section(title string, opts Options) string {
	line := fmt.Sprintf("== %s ==", title)
	if opts.Colorize {
		line = text.Colors{text.FgBlue, text.Bold}.Sprint(line)
	}
	return line + "\n"
}

// classColors approximates each class color on an ANSI terminal.
func classColors(c analytics.Class) text.Colors {
	switch c {
	case analytics.Positive:
		return text.Colors{text.FgHiGreen}
	case analytics.SlightlyPositive:
		return text.Colors{text.FgGreen}
	case analytics.SlightlyNegative:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

func paint(s string, score float64, opts Options) string {
	if !opts.Colorize {
		return s
	}
	return classColors(analytics.Classify(score)).Sprint(s)
}

func score(f float64) string { return fmt.Sprintf("%.2f", f) }

func writeSummary(b *strings.Builder, s analytics.Summary, opts Options) {
	avg := "n/a"
	if s.HasAverage {
		avg = paint(score(s.AverageSentiment), s.AverageSentiment, opts)
	}
	fmt.Fprintf(b, "  %-18s %s\n", "Video:", s.Filename)
	fmt.Fprintf(b, "  %-18s %s\n", "Duration:", s.Duration)
	fmt.Fprintf(b, "  %-18s %d\n", "Dialogues:", s.Dialogues)
	fmt.Fprintf(b, "  %-18s %s\n", "Average Sentiment:", avg)
	fmt.Fprintf(b, "  %-18s %d\n", "Emotional Peaks:", s.EmotionalPeaks)
}

// writeTimeline draws one bar per point around a zero axis; peaks get a '*'.
func writeTimeline(b *strings.Builder, series []analytics.Point, opts Options) {
	for _, p := range series {
		n := int(math.Round(analytics.BarWidth(p.Sentiment) / 100 * timelineHalfWidth))
		bar := strings.Repeat("█", n)
		var left, right string
		if p.Sentiment < 0 {
			left = strings.Repeat(" ", timelineHalfWidth-n) + paint(bar, p.Sentiment, opts)
			right = strings.Repeat(" ", timelineHalfWidth)
		} else {
			left = strings.Repeat(" ", timelineHalfWidth)
			right = paint(bar, p.Sentiment, opts) + strings.Repeat(" ", timelineHalfWidth-n)
		}
		mark := " "
		if analytics.IsIntense(p.Sentiment) {
			mark = "*"
		}
		fmt.Fprintf(b, "  %6s %s│%s %s %6s\n", analytics.FormatClock(p.Seconds), left, right, mark, score(p.Sentiment))
	}
}

func dialogueTable(rows []analytics.Row, opts Options) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Time", "Speaker", "Dialogue", "Sentiment", "Emotion"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Timestamp, r.Speaker, r.Text, paint(score(r.Sentiment), r.Sentiment, opts), r.Emotion})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: dialogueMaxWidth},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func speakerTable(stats []analytics.SpeakerStat, opts Options) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Speaker", "Lines", "Share", "Mean Sentiment"})
	for _, s := range stats {
		tw.AppendRow(table.Row{
			s.Speaker,
			s.Lines,
			fmt.Sprintf("%.0f%%", s.Share*100),
			paint(score(s.MeanSentiment), s.MeanSentiment, opts),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func writeHighlights(b *strings.Builder, peaks []analytics.Point, opts Options) {
	for _, p := range peaks {
		fmt.Fprintf(b, "  %-6s %s %q %s\n",
			p.Timestamp,
			paint(p.Emotion, p.Sentiment, opts),
			p.Text,
			paint(score(p.Sentiment), p.Sentiment, opts))
	}
}
