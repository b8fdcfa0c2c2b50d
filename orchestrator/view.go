package orchestrator

import (
	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/maastricht-university/clip-sentiment/intake"
)

// Phase is the single discriminant of the controller's state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhasePolling
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhasePolling:
		return "polling"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a submission is in flight.
func (p Phase) Busy() bool { return p == PhaseUploading || p == PhasePolling }

// View is a snapshot of the controller. Which fields are meaningful depends on
// Phase:
//
//	Idle       nothing
//	Uploading  SessionID, Candidate, StatusText, UploadPercent
//	Polling    SessionID, JobID, StatusText, Step, Progress
//	Ready      SessionID, JobID, StatusText, Result
//	Failed     SessionID, StatusText, Err; JobID once one was issued;
//	           Candidate only when the upload itself failed, for Retry
//
// Views are only built by the controller's transitions, so a Result never
// coexists with an in-flight phase.
type View struct {
	Phase         Phase
	SessionID     string
	Candidate     *intake.Candidate
	JobID         string
	StatusText    string
	UploadPercent int
	Step          string
	Progress      int
	Result        *clients.AnalysisResult
	Err           error
}

// User-visible status lines.
const (
	MsgUploading      = "Uploading video..."
	MsgUploaded       = "Video uploaded. Starting analysis..."
	MsgComplete       = "Analysis complete!"
	MsgUploadFailed   = "Upload failed. Please try again."
	MsgAnalysisFailed = "Analysis failed. Please try again."
	MsgStatusFailed   = "Status check failed. Please try again."
	MsgFetchFailed    = "Results retrieval failed. Please try again."
	MsgTimedOut       = "Analysis timed out. Please try again."
)

func uploading(session string, c intake.Candidate) View {
	return View{Phase: PhaseUploading, SessionID: session, Candidate: &c, StatusText: MsgUploading}
}

func polling(session, jobID string) View {
	return View{Phase: PhasePolling, SessionID: session, JobID: jobID, StatusText: MsgUploaded}
}

func ready(session, jobID string, res *clients.AnalysisResult) View {
	return View{Phase: PhaseReady, SessionID: session, JobID: jobID, StatusText: MsgComplete, Result: res}
}

func failed(session, jobID string, c *intake.Candidate, msg string, err error) View {
	return View{Phase: PhaseFailed, SessionID: session, JobID: jobID, Candidate: c, StatusText: msg, Err: err}
}

// EventKind says what changed.
type EventKind int

const (
	EventUploadProgress EventKind = iota
	EventStatus
	EventReady
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventUploadProgress:
		return "upload_progress"
	case EventStatus:
		return "status"
	case EventReady:
		return "ready"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ends its session's stream.
func (k EventKind) Terminal() bool { return k == EventReady || k == EventFailed }

// Event is published on a session's stream after each state change. View is
// the controller state right after the change.
type Event struct {
	Kind     EventKind
	Progress clients.Progress
	View     View
}
