package clients

import (
	"context"
	"net/url"
)

// Segment is one annotated dialogue line. Sentiment is in [-1, 1].
type Segment struct {
	Timestamp string  `json:"timestamp"`
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	Sentiment float64 `json:"sentiment"`
	Emotion   string  `json:"emotion"`
}

// AnalysisResult is the body of GET /api/results/{job_id}. Segments are in
// chronological order.
type AnalysisResult struct {
	Filename string    `json:"filename"`
	Duration int       `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Results fetches the finished analysis for a completed job.
func (h *HTTP) Results(ctx context.Context, jobID string) (*AnalysisResult, error) {
	var out AnalysisResult
	code, err := h.getJSON(ctx, "/api/results/"+url.PathEscape(jobID), &out)
	if err != nil {
		return nil, &FetchError{JobID: jobID, StatusCode: code, Err: err}
	}
	return &out, nil
}
