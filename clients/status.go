package clients

import (
	"context"
	"errors"
	"net/url"
)

// JobState is the backend's lifecycle label for a job. Values other than the
// constants below (the backend also reports "received") are non-terminal.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether polling stops at this state.
func (s JobState) Terminal() bool { return s == JobCompleted || s == JobFailed }

// JobStatus is the body of GET /api/status/{job_id}.
type JobStatus struct {
	Status      JobState `json:"status"`
	CurrentStep string   `json:"current_step,omitempty"`
	Progress    int      `json:"progress"`
	ResultPath  string   `json:"result_path,omitempty"`
}

// Status reads the job's current status once.
func (h *HTTP) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	var out JobStatus
	code, err := h.getJSON(ctx, "/api/status/"+url.PathEscape(jobID), &out)
	if err != nil {
		return nil, &PollError{JobID: jobID, StatusCode: code, Err: err}
	}
	if out.Status == "" {
		return nil, &PollError{JobID: jobID, StatusCode: code, Err: errors.New("response has no status")}
	}
	if out.Progress < 0 {
		out.Progress = 0
	} else if out.Progress > 100 {
		out.Progress = 100
	}
	return &out, nil
}
