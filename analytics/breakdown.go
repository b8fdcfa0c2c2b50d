package analytics

import "github.com/maastricht-university/clip-sentiment/clients"

// SpeakerStat aggregates one speaker's lines.
type SpeakerStat struct {
	Speaker       string  `json:"speaker"`
	Lines         int     `json:"lines"`
	Share         float64 `json:"share"` // fraction of all lines
	MeanSentiment float64 `json:"mean_sentiment"`
}

// EmotionCount tallies one emotion label.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// Speakers groups segments by speaker, ordered by first appearance.
func Speakers(segs []clients.Segment) []SpeakerStat {
	if len(segs) == 0 {
		return nil
	}
	idx := map[string]int{}
	sums := []float64{}
	var out []SpeakerStat
	for _, s := range segs {
		i, seen := idx[s.Speaker]
		if !seen {
			i = len(out)
			idx[s.Speaker] = i
			out = append(out, SpeakerStat{Speaker: s.Speaker})
			sums = append(sums, 0)
		}
		out[i].Lines++
		sums[i] += s.Sentiment
	}
	total := float64(len(segs))
	for i := range out {
		out[i].MeanSentiment = sums[i] / float64(out[i].Lines)
		out[i].Share = float64(out[i].Lines) / total
	}
	return out
}

// Emotions counts emotion labels, ordered by first appearance. Empty labels
// are skipped.
func Emotions(segs []clients.Segment) []EmotionCount {
	idx := map[string]int{}
	var out []EmotionCount
	for _, s := range segs {
		if s.Emotion == "" {
			continue
		}
		i, seen := idx[s.Emotion]
		if !seen {
			i = len(out)
			idx[s.Emotion] = i
			out = append(out, EmotionCount{Emotion: s.Emotion})
		}
		out[i].Count++
	}
	return out
}
