package intake

import (
	"fmt"
	"strings"
)

// DefaultMediaType is the only container the backend currently accepts.
const DefaultMediaType = "video/mp4"

// ValidationError is returned for a candidate the backend would refuse. It is
// recovered locally: the user is prompted again and no state changes.
type ValidationError struct {
	Name      string
	MediaType string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("intake: %s (%s): %s", e.Name, e.MediaType, e.Reason)
}

// Policy is the set of declared media types accepted for submission.
type Policy struct {
	accepted []string
}

// NewPolicy returns a policy accepting exactly the given types. With no
// types it falls back to DefaultMediaType.
func NewPolicy(types ...string) Policy {
	accepted := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			accepted = append(accepted, t)
		}
	}
	if len(accepted) == 0 {
		accepted = []string{DefaultMediaType}
	}
	return Policy{accepted: accepted}
}

// Accepted lists the accepted media types.
func (p Policy) Accepted() []string {
	out := make([]string, len(p.accepted))
	copy(out, p.accepted)
	return out
}

// Validate checks c without touching it. Every entry point (a path, stdin, a
// programmatic payload) goes through here with no special cases.
func (p Policy) Validate(c Candidate) (Candidate, error) {
	for _, t := range p.accepted {
		if c.MediaType == t {
			return c, nil
		}
	}
	return Candidate{}, &ValidationError{
		Name:      c.Name,
		MediaType: c.MediaType,
		Reason:    p.reason(),
	}
}

func (p Policy) reason() string {
	if len(p.accepted) == 1 && p.accepted[0] == DefaultMediaType {
		return "Please select an MP4 video file"
	}
	return "Please select a video file of type " + strings.Join(p.accepted, ", ")
}
