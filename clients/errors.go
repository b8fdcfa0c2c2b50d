package clients

import "fmt"

// TransportError is an upload that did not yield a job id. StatusCode is 0
// when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string { return describe("upload", "", e.StatusCode, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// PollError is a status check that failed at the transport level or returned
// a body that could not be understood.
type PollError struct {
	JobID      string
	StatusCode int
	Err        error
}

func (e *PollError) Error() string { return describe("status", e.JobID, e.StatusCode, e.Err) }
func (e *PollError) Unwrap() error { return e.Err }

// FetchError is a failed results retrieval for a completed job.
type FetchError struct {
	JobID      string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string { return describe("results", e.JobID, e.StatusCode, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

func describe(op, jobID string, code int, err error) string {
	if jobID != "" {
		op = fmt.Sprintf("%s %s", op, jobID)
	}
	switch {
	case code != 0 && err != nil:
		return fmt.Sprintf("%s (http %d): %v", op, code, err)
	case code != 0:
		return fmt.Sprintf("%s (http %d)", op, code)
	case err != nil:
		return fmt.Sprintf("%s: %v", op, err)
	default:
		return op + " failed"
	}
}
