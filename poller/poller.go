// Package poller follows a backend job from submission to a terminal status.
//
// Status checks are strictly sequential: the next check is scheduled only
// after the previous response (or error) has been handled, so a job never has
// two checks in flight. A canceled context stops the sequence; a check that
// was already scheduled becomes a no-op and its result is never reported.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/maastricht-university/clip-sentiment/logging"
	"github.com/maastricht-university/clip-sentiment/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the fixed delay between status checks.
const DefaultInterval = 2 * time.Second

var (
	// ErrJobFailed means the backend reported the job as failed.
	ErrJobFailed = errors.New("poller: job failed")
	// ErrTimedOut means the job was still running when the poll budget ran out.
	ErrTimedOut = errors.New("poller: timed out waiting for job")
)

type State int

const (
	StateIdle State = iota
	StatePolling
	StateCompleted
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status checks follow this state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// StatusReader is the one backend call the poller needs.
type StatusReader interface {
	Status(ctx context.Context, jobID string) (*clients.JobStatus, error)
}

// Clock schedules the delay between checks.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Options struct {
	Interval time.Duration
	// MaxDuration bounds the whole sequence; zero polls until a terminal
	// status arrives.
	MaxDuration time.Duration
	Clock       Clock
	Logger      *logrus.Logger
	Metrics     *metrics.Metrics
}

type Poller struct {
	api         StatusReader
	interval    time.Duration
	maxDuration time.Duration
	clock       Clock
	log         *logrus.Entry
	metrics     *metrics.Metrics
}

func New(api StatusReader, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Poller{
		api:         api,
		interval:    opts.Interval,
		maxDuration: opts.MaxDuration,
		clock:       opts.Clock,
		log:         logging.Component(opts.Logger, "poller"),
		metrics:     opts.Metrics,
	}
}

// Result describes where a poll sequence ended.
type Result struct {
	State State
	Ticks int
	Last  clients.JobStatus
}

// Poll checks the job immediately and then every interval until the backend
// reports completed or failed. onTick sees each non-terminal status.
//
// The returned error is nil only for StateCompleted. It is ErrJobFailed for a
// backend failure, a *clients.PollError when a check itself failed,
// ErrTimedOut when MaxDuration elapsed, and ctx.Err() when the caller gave up,
// in which case State stays StatePolling.
func (p *Poller) Poll(ctx context.Context, jobID string, onTick func(clients.JobStatus)) (Result, error) {
	res := Result{State: StatePolling}
	log := p.log.WithField("job_id", jobID)
	start := p.clock.Now()
	var deadline time.Time
	if p.maxDuration > 0 {
		deadline = start.Add(p.maxDuration)
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		st, err := p.api.Status(ctx, jobID)
		res.Ticks++
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		if err != nil {
			p.metrics.ObservePollTick("")
			log.WithError(err).Warn("status check failed")
			return p.finish(res, StateFailed, start), err
		}
		res.Last = *st
		p.metrics.ObservePollTick(string(st.Status))

		switch st.Status {
		case clients.JobCompleted:
			log.WithField("ticks", res.Ticks).Info("job completed")
			return p.finish(res, StateCompleted, start), nil
		case clients.JobFailed:
			log.WithField("ticks", res.Ticks).Warn("job failed")
			return p.finish(res, StateFailed, start), ErrJobFailed
		}

		log.WithFields(logrus.Fields{
			"status":   st.Status,
			"step":     st.CurrentStep,
			"progress": st.Progress,
		}).Debug("job still running")
		if onTick != nil {
			onTick(*st)
		}

		if !deadline.IsZero() && p.clock.Now().Add(p.interval).After(deadline) {
			log.WithField("max_duration", p.maxDuration).Warn("giving up on job")
			return p.finish(res, StateTimedOut, start), fmt.Errorf("%w after %s", ErrTimedOut, p.maxDuration)
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}
}

func (p *Poller) finish(res Result, s State, start time.Time) Result {
	res.State = s
	p.metrics.ObservePollDuration(p.clock.Now().Sub(start))
	return res
}
