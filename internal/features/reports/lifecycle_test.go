package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

func newTestEngine() (*Engine, *clock.Manual) {
	clk := clock.NewManual(t0)
	return NewEngine(clk, sequentialIDs()), clk
}

func TestSubmit(t *testing.T) {
	e, _ := newTestEngine()

	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "r-1", r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, SeverityModerate, r.Severity)
	assert.Equal(t, "Fresh stumps along the eastern bank", r.Title)
	assert.Equal(t, citizen.ID, r.AuthorID)
	assert.Equal(t, t0, r.SubmittedAt)
	assert.Equal(t, int64(1), r.Version)
	assert.Empty(t, r.History)

	r2, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, r2.ID)
}

func TestSubmit_DefaultIDsAreUUIDs(t *testing.T) {
	e := NewEngine(nil, nil)
	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)
	assert.Len(t, r.ID, 36)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"empty description", func(r *SubmitRequest) { r.Description = "   " }, "description"},
		{"long description", func(r *SubmitRequest) { r.Description = strings.Repeat("x", 2001) }, "description"},
		{"missing location", func(r *SubmitRequest) { r.Location = nil }, "location"},
		{"latitude out of range", func(r *SubmitRequest) { r.Location = &Location{Lat: 90.5, Lng: 0} }, "location"},
		{"longitude out of range", func(r *SubmitRequest) { r.Location = &Location{Lat: 0, Lng: -180.01} }, "location"},
		{"unknown severity", func(r *SubmitRequest) { r.Severity = "catastrophic" }, "severity"},
		{"long title", func(r *SubmitRequest) { r.Title = strings.Repeat("t", 121) }, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			req := validRequest()
			tt.mutate(&req)

			// validation is reported even for an anonymous caller
			for _, author := range []*auth.Identity{citizen, nil} {
				_, err := e.Submit(author, req)
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestSubmit_BoundaryCoordinatesAccepted(t *testing.T) {
	e, _ := newTestEngine()
	for _, loc := range []Location{{-90, -180}, {90, 180}, {0, 0}} {
		req := validRequest()
		loc := loc
		req.Location = &loc
		_, err := e.Submit(citizen, req)
		require.NoError(t, err)
	}
}

func TestSubmit_AnonymousRefused(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Submit(nil, validRequest())
	require.ErrorIs(t, err, apperrors.ErrAuthorization)

	_, err = e.Submit(&auth.Identity{Email: "x@example.org", Role: auth.RoleUser}, validRequest())
	require.ErrorIs(t, err, apperrors.ErrAuthorization)
}

func TestSubmit_DerivedTitle(t *testing.T) {
	e, _ := newTestEngine()
	req := validRequest()
	req.Description = strings.Repeat("mangrove ", 20) + "\nsecond line"

	r, err := e.Submit(citizen, req)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(r.Title, "..."))
	assert.LessOrEqual(t, len([]rune(r.Title)), 63)
	assert.NotContains(t, r.Title, "second line")
}

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusInvestigating, StatusResolved}
	legal := map[[2]Status]bool{
		{StatusPending, StatusInvestigating}:  true,
		{StatusPending, StatusResolved}:       true,
		{StatusInvestigating, StatusResolved}: true,
		{StatusInvestigating, StatusPending}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			e, _ := newTestEngine()
			r, err := e.Submit(citizen, validRequest())
			require.NoError(t, err)
			r.Status = from

			next, err := e.Transition(r, ranger, to)
			if legal[[2]Status{from, to}] {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, next.Status)
				continue
			}

			var terr *apperrors.IllegalTransitionError
			require.ErrorAs(t, err, &terr, "%s -> %s", from, to)
			assert.Equal(t, string(from), terr.From)
			assert.Equal(t, string(to), terr.To)
		}
	}
}

func TestTransition_NonAdminAlwaysForbidden(t *testing.T) {
	e, _ := newTestEngine()
	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)

	for _, from := range []Status{StatusPending, StatusInvestigating, StatusResolved} {
		r.Status = from
		for _, to := range []Status{StatusPending, StatusInvestigating, StatusResolved, "bogus"} {
			for _, actor := range []*auth.Identity{citizen, nil, {ID: "x", Role: "superuser"}} {
				_, err := e.Transition(r, actor, to)
				require.ErrorIs(t, err, apperrors.ErrAuthorization)
				require.NotErrorIs(t, err, apperrors.ErrIllegalTransition)
			}
		}
	}
}

func TestTransition_RoundTrip(t *testing.T) {
	e, clk := newTestEngine()

	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	r, err = e.Transition(r, ranger, StatusInvestigating)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	r, err = e.Transition(r, ranger, StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, r.Status)
	assert.Equal(t, int64(3), r.Version)
	assert.Equal(t, t0.Add(2*time.Hour), r.UpdatedAt)
	assert.Equal(t, t0, r.SubmittedAt)

	require.Len(t, r.History, 2)
	assert.Equal(t, StatusChange{From: StatusPending, To: StatusInvestigating, ActorID: ranger.ID, At: t0.Add(time.Hour)}, r.History[0])
	assert.Equal(t, StatusInvestigating, r.History[1].From)

	for _, to := range []Status{StatusPending, StatusInvestigating, StatusResolved} {
		_, err = e.Transition(r, ranger, to)
		require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	e, _ := newTestEngine()
	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)

	next, err := e.Transition(r, ranger, StatusInvestigating)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.Empty(t, r.History)
	assert.Equal(t, int64(1), r.Version)
	assert.Equal(t, r.ID, next.ID)
	assert.Equal(t, r.Location, next.Location)
	assert.Equal(t, r.AuthorID, next.AuthorID)
}

func TestTransition_UnknownTargetIsValidationError(t *testing.T) {
	e, _ := newTestEngine()
	r, err := e.Submit(citizen, validRequest())
	require.NoError(t, err)

	_, err = e.Transition(r, ranger, "archived")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNextStatuses(t *testing.T) {
	assert.ElementsMatch(t, []Status{StatusInvestigating, StatusResolved}, NextStatuses(StatusPending))
	assert.Empty(t, NextStatuses(StatusResolved))
}
