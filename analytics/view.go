package analytics

import "github.com/maastricht-university/clip-sentiment/clients"

// Summary is the stat strip above the chart.
type Summary struct {
	Filename        string `json:"filename"`
	DurationSeconds int    `json:"duration_seconds"`
	Duration        string `json:"duration"`
	Dialogues       int    `json:"dialogues"`

	// HasAverage is false when there are no dialogues; AverageSentiment and
	// AverageClass are then meaningless and left zero.
	HasAverage       bool    `json:"has_average"`
	AverageSentiment float64 `json:"average_sentiment"`
	AverageClass     Class   `json:"average_class"`
	EmotionalPeaks   int     `json:"emotional_peaks"`
}

// Row is one line of the dialogue table.
type Row struct {
	Point
	Class     Class     `json:"class"`
	Color     string    `json:"color"`
	Highlight Highlight `json:"highlight"`
	BarWidth  float64   `json:"bar_width"`
	Intense   bool      `json:"intense"`
}

// View is everything a presentation layer needs for one result.
type View struct {
	Summary  Summary        `json:"summary"`
	Series   []Point        `json:"series"`
	Peaks    []Point        `json:"peaks"`
	Rows     []Row          `json:"rows"`
	Speakers []SpeakerStat  `json:"speakers"`
	Emotions []EmotionCount `json:"emotions"`
}

// Empty reports whether there is nothing to chart.
func (v View) Empty() bool { return len(v.Series) == 0 }

// Summarize computes the stat strip.
func Summarize(res *clients.AnalysisResult) Summary {
	if res == nil {
		return Summary{Duration: FormatClock(0)}
	}
	s := Summary{
		Filename:        res.Filename,
		DurationSeconds: res.Duration,
		Duration:        FormatClock(res.Duration),
		Dialogues:       len(res.Segments),
		EmotionalPeaks:  len(IntenseMoments(res.Segments)),
	}
	if len(res.Segments) > 0 {
		s.HasAverage = true
		s.AverageSentiment = AverageSentiment(res.Segments)
		s.AverageClass = Classify(s.AverageSentiment)
	}
	return s
}

// Derive builds the full view. A nil result gives an empty view.
func Derive(res *clients.AnalysisResult) View {
	v := View{Summary: Summarize(res)}
	if res == nil {
		return v
	}
	v.Series = ToChartSeries(res.Segments)
	v.Rows = make([]Row, 0, len(v.Series))
	for _, p := range v.Series {
		intense := IsIntense(p.Sentiment)
		if intense {
			v.Peaks = append(v.Peaks, p)
		}
		class := Classify(p.Sentiment)
		v.Rows = append(v.Rows, Row{
			Point:     p,
			Class:     class,
			Color:     class.Color(),
			Highlight: RowHighlight(p.Sentiment),
			BarWidth:  BarWidth(p.Sentiment),
			Intense:   intense,
		})
	}
	v.Speakers = Speakers(res.Segments)
	v.Emotions = Emotions(res.Segments)
	return v
}
