package reports

import (
	"github.com/google/uuid"

	"github.com/xyz-asif/mangrovewatch/internal/access"
	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// transitions lists every legal status change. Resolved has no exits and
// no status may move to itself.
var transitions = map[Status][]Status{
	StatusPending:       {StatusInvestigating, StatusResolved},
	StatusInvestigating: {StatusResolved, StatusPending},
	StatusResolved:      nil,
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses a report in from may move to.
func NextStatuses(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}

// TransitionRequirement is what an actor needs to change a report's status.
var TransitionRequirement = access.RoleAtLeast(auth.RoleAdmin)

// Engine owns the report state machine. It builds and advances Report
// values and never persists them.
type Engine struct {
	clock clock.Clock
	newID func() string
}

// NewEngine returns an Engine. A nil clk uses the system clock and a nil
// newID generates random UUIDs.
func NewEngine(clk clock.Clock, newID func() string) *Engine {
	if clk == nil {
		clk = clock.System()
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{clock: clk, newID: newID}
}

// Submit builds a new pending report authored by author. Input is
// validated before the author is checked; an anonymous author is refused.
func (e *Engine) Submit(author *auth.Identity, req SubmitRequest) (*Report, error) {
	if err := ValidateSubmit(&req); err != nil {
		return nil, err
	}

	if !access.Authorize(author, access.AnyAuthenticated()).Allowed || author.ID == "" {
		return nil, &apperrors.AuthorizationError{Message: "an authenticated author is required"}
	}

	now := e.clock.Now()
	return &Report{
		ID:          e.newID(),
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      StatusPending,
		Location:    *req.Location,
		AuthorID:    author.ID,
		HasPhoto:    req.HasPhoto,
		SubmittedAt: now,
		UpdatedAt:   now,
		Version:     1,
		History:     []StatusChange{},
	}, nil
}

// Transition returns a copy of report moved to target by actor. The actor
// is authorized before the table is consulted, so an unprivileged actor
// learns nothing about the report's state. report itself is not modified.
func (e *Engine) Transition(report *Report, actor *auth.Identity, target Status) (*Report, error) {
	if !access.Authorize(actor, TransitionRequirement).Allowed {
		return nil, &apperrors.AuthorizationError{}
	}
	if report == nil {
		return nil, apperrors.ErrNotFound
	}
	if err := ValidateTarget(target); err != nil {
		return nil, err
	}
	if !CanTransition(report.Status, target) {
		return nil, &apperrors.IllegalTransitionError{From: string(report.Status), To: string(target)}
	}

	now := e.clock.Now()
	next := report.Clone()
	next.Status = target
	next.UpdatedAt = now
	next.Version = report.Version + 1
	next.History = append(next.History, StatusChange{
		From:    report.Status,
		To:      target,
		ActorID: actor.ID,
		At:      now,
	})
	return next, nil
}
