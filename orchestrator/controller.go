package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/maastricht-university/clip-sentiment/intake"
	"github.com/maastricht-university/clip-sentiment/logging"
	"github.com/maastricht-university/clip-sentiment/metrics"
	"github.com/maastricht-university/clip-sentiment/poller"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUploadInFlight is returned by Submit while a previous submission is
	// still uploading or polling. It is a caller bug, not a condition to wait
	// out: Reset first.
	ErrUploadInFlight = errors.New("orchestrator: a submission is already in flight")
	// ErrNothingToRetry is returned by Retry when there is no failed upload
	// whose candidate was kept.
	ErrNothingToRetry = errors.New("orchestrator: nothing to retry")
)

// Backend is the analysis service contract the controller drives.
type Backend interface {
	Upload(ctx context.Context, c intake.Candidate, onProgress func(clients.Progress)) (string, error)
	Status(ctx context.Context, jobID string) (*clients.JobStatus, error)
	Results(ctx context.Context, jobID string) (*clients.AnalysisResult, error)
}

type Options struct {
	Policy  intake.Policy
	Poll    poller.Options
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Controller runs one submission at a time through upload, polling and
// results retrieval. Each submission is a session; state changes from a
// session that has been reset or replaced are dropped.
type Controller struct {
	api     Backend
	policy  intake.Policy
	poller  *poller.Poller
	log     *logrus.Entry
	metrics *metrics.Metrics

	mu     sync.Mutex
	view   View
	cancel context.CancelFunc
}

func New(api Backend, opts Options) *Controller {
	if opts.Poll.Logger == nil {
		opts.Poll.Logger = opts.Logger
	}
	if opts.Poll.Metrics == nil {
		opts.Poll.Metrics = opts.Metrics
	}
	return &Controller{
		api:     api,
		policy:  opts.Policy,
		poller:  poller.New(api, opts.Poll),
		log:     logging.Component(opts.Logger, "controller"),
		metrics: opts.Metrics,
	}
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Submit validates cand and, if accepted, starts a new session. The returned
// channel carries the session's events and is closed when the session ends;
// a session that ends normally always sends EventReady or EventFailed last.
// Callers must drain the channel. Intermediate progress events are dropped
// rather than block when the reader falls behind; the one reporting the whole
// payload sent is not.
//
// A rejected candidate returns *intake.ValidationError and leaves the state
// untouched.
func (c *Controller) Submit(ctx context.Context, cand intake.Candidate) (<-chan Event, error) {
	cand, err := c.policy.Validate(cand)
	if err != nil {
		c.log.WithError(err).Info("candidate rejected")
		return nil, err
	}

	c.mu.Lock()
	if c.view.Phase.Busy() {
		c.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	session := uuid.NewString()
	sctx, cancel := context.WithCancel(ctx)
	c.view = uploading(session, cand)
	c.cancel = cancel
	c.mu.Unlock()

	events := make(chan Event, 16)
	go c.run(sctx, cancel, session, cand, events)
	return events, nil
}

// Retry resubmits the candidate kept by a failed upload.
func (c *Controller) Retry(ctx context.Context) (<-chan Event, error) {
	v := c.View()
	if v.Phase != PhaseFailed || v.Candidate == nil {
		return nil, ErrNothingToRetry
	}
	return c.Submit(ctx, *v.Candidate)
}

// Reset abandons the current session, if any, and returns to Idle. Nothing
// the abandoned session does afterwards reaches the state or its stream.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.view.SessionID != "" {
		c.log.WithField("session_id", c.view.SessionID).Debug("session reset")
	}
	c.view = View{}
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, session string, cand intake.Candidate, events chan<- Event) {
	defer close(events)
	defer cancel()
	log := c.log.WithField("session_id", session)

	log.WithFields(logrus.Fields{"file": cand.Name, "size": cand.DisplaySize()}).Info("uploading")
	jobID, err := c.api.Upload(ctx, cand, func(p clients.Progress) {
		c.progress(ctx, session, p, events)
	})
	c.metrics.ObserveUpload(err, cand.Size)
	if c.abandoned(ctx, session) {
		return
	}
	if err != nil {
		log.WithError(err).Warn("upload failed")
		c.finish(ctx, session, failed(session, "", &cand, MsgUploadFailed, err), events)
		return
	}

	log = log.WithField("job_id", jobID)
	log.Info("upload accepted")
	if !c.emit(ctx, session, EventStatus, clients.Progress{}, func(v *View) { *v = polling(session, jobID) }, events) {
		return
	}

	res, err := c.poller.Poll(ctx, jobID, func(st clients.JobStatus) {
		c.emit(ctx, session, EventStatus, clients.Progress{}, func(v *View) {
			v.Step = st.CurrentStep
			v.Progress = st.Progress
			v.StatusText = StatusText(st)
		}, events)
	})
	if c.abandoned(ctx, session) {
		return
	}
	if err != nil {
		log.WithError(err).WithField("state", res.State).Warn("analysis did not complete")
		c.finish(ctx, session, failed(session, jobID, nil, pollFailureMessage(err), err), events)
		return
	}

	result, err := c.api.Results(ctx, jobID)
	c.metrics.ObserveFetch(err)
	if c.abandoned(ctx, session) {
		return
	}
	if err != nil {
		log.WithError(err).Warn("results retrieval failed")
		c.finish(ctx, session, failed(session, jobID, nil, MsgFetchFailed, err), events)
		return
	}
	log.WithField("segments", len(result.Segments)).Info("analysis ready")
	c.finish(ctx, session, ready(session, jobID, result), events)
}

// StatusText renders a running job's status line, e.g. "Transcribing audio: 30%".
func StatusText(st clients.JobStatus) string {
	step := st.CurrentStep
	if step == "" {
		step = string(st.Status)
	}
	return fmt.Sprintf("%s: %d%%", step, st.Progress)
}

func pollFailureMessage(err error) string {
	switch {
	case errors.Is(err, poller.ErrJobFailed):
		return MsgAnalysisFailed
	case errors.Is(err, poller.ErrTimedOut):
		return MsgTimedOut
	default:
		return MsgStatusFailed
	}
}

// apply mutates the view only if session is still the current one.
func (c *Controller) apply(session string, mutate func(*View)) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.SessionID != session {
		return View{}, false
	}
	mutate(&c.view)
	return c.view, true
}

func (c *Controller) emit(ctx context.Context, session string, kind EventKind, p clients.Progress, mutate func(*View), events chan<- Event) bool {
	v, ok := c.apply(session, mutate)
	if !ok || ctx.Err() != nil {
		return false
	}
	select {
	case events <- Event{Kind: kind, Progress: p, View: v}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) progress(ctx context.Context, session string, p clients.Progress, events chan<- Event) {
	v, ok := c.apply(session, func(v *View) {
		if pct := p.Percent(); pct > v.UploadPercent {
			v.UploadPercent = pct
		}
	})
	if !ok || ctx.Err() != nil {
		return
	}
	ev := Event{Kind: EventUploadProgress, Progress: p, View: v}
	// The completing report is always delivered; intermediate ones may drop.
	if p.BytesSent >= p.BytesTotal {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
		return
	}
	select {
	case events <- ev:
	default:
	}
}

// finish installs a terminal view in one step and publishes it.
func (c *Controller) finish(ctx context.Context, session string, terminal View, events chan<- Event) {
	kind := EventReady
	if terminal.Phase == PhaseFailed {
		kind = EventFailed
	}
	if c.emit(ctx, session, kind, clients.Progress{}, func(v *View) { *v = terminal }, events) {
		c.metrics.ObserveOutcome(terminal.Phase.String())
	}
}

// abandoned reports whether the session should stop without a terminal event.
// A session whose own context ended without a Reset goes back to Idle, which
// leaves the user at the intake step.
func (c *Controller) abandoned(ctx context.Context, session string) bool {
	if ctx.Err() == nil {
		return false
	}
	if _, ok := c.apply(session, func(v *View) { *v = View{} }); ok {
		c.log.WithField("session_id", session).Info("session canceled")
	}
	return true
}
