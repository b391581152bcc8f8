package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/xyz-asif/mangrovewatch/internal/access"
	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/metrics"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// Store persists reports. Save replaces the stored report only if its
// version still equals expectedVersion and returns ErrConflict otherwise.
type Store interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, int64, error)
	All(ctx context.Context) ([]Report, error)
	Save(ctx context.Context, report *Report, expectedVersion int64) error
}

// Invalidator is told whenever the report set changes.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service runs the lifecycle engine against a Store.
type Service struct {
	engine      *Engine
	store       Store
	invalidator Invalidator
	metrics     *metrics.Metrics
	log         *logger.Logger
}

func NewService(engine *Engine, store Store, invalidator Invalidator, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		engine:      engine,
		store:       store,
		invalidator: invalidator,
		metrics:     m,
		log:         logger.OrDefault(log).With("reports"),
	}
}

// Submit creates and stores a report authored by author.
func (s *Service) Submit(ctx context.Context, author *auth.Identity, req SubmitRequest) (*Report, error) {
	report, err := s.engine.Submit(author, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	s.metrics.ReportSubmitted(string(report.Severity))
	s.invalidate(ctx)
	s.log.Info("report %s submitted by %s (%s)", report.ID, report.AuthorID, report.Severity)
	return report, nil
}

// Get returns one report to an authenticated caller.
func (s *Service) Get(ctx context.Context, caller *auth.Identity, id string) (*Report, error) {
	if err := access.Authorize(caller, access.AnyAuthenticated()).Err(); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns a page of reports matching filter and the total match count.
func (s *Service) List(ctx context.Context, caller *auth.Identity, filter ListFilter) ([]Report, int64, error) {
	if err := access.Authorize(caller, access.AnyAuthenticated()).Err(); err != nil {
		return nil, 0, err
	}
	if err := ValidateFilter(&filter); err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, filter)
}

// All returns every stored report.
func (s *Service) All(ctx context.Context) ([]Report, error) {
	return s.store.All(ctx)
}

// Transition moves report id to target on behalf of actor. The actor is
// authorized before the report is loaded, so a refused caller cannot tell
// whether id exists. Of two concurrent transitions of the same report at
// most one is applied; the other fails with ErrConflict.
func (s *Service) Transition(ctx context.Context, actor *auth.Identity, id string, target Status) (*Report, error) {
	label := string(target)
	if !target.Valid() {
		label = "invalid"
	}

	if err := access.Authorize(actor, TransitionRequirement).Err(); err != nil {
		s.metrics.TransitionAttempted("unknown", label, metrics.OutcomeForbidden)
		return nil, &apperrors.AuthorizationError{}
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.Transition(current, actor, target)
	if err != nil {
		if errors.Is(err, apperrors.ErrIllegalTransition) {
			s.metrics.TransitionAttempted(string(current.Status), label, metrics.OutcomeIllegal)
		}
		return nil, err
	}

	if err := s.store.Save(ctx, next, current.Version); err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, apperrors.ErrConflict) {
			outcome = metrics.OutcomeStale
		}
		s.metrics.TransitionAttempted(string(current.Status), label, outcome)
		return nil, fmt.Errorf("save report %s: %w", id, err)
	}

	s.metrics.TransitionAttempted(string(current.Status), label, metrics.OutcomeApplied)
	s.invalidate(ctx)
	s.log.Info("report %s: %s -> %s by %s", id, current.Status, target, actor.ID)
	return next, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
