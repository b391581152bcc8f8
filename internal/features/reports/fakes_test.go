package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/pagination"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// memoryStore is a Store with the same compare-and-swap contract as the
// Mongo repository. afterGet, when set, runs after every Get.
type memoryStore struct {
	mu       sync.Mutex
	reports  map[string]*Report
	afterGet func()
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: make(map[string]*Report)}
}

func (m *memoryStore) Create(_ context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[report.ID]; ok {
		return apperrors.ErrDuplicate
	}
	m.reports[report.ID] = report.Clone()
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*Report, error) {
	m.mu.Lock()
	r, ok := m.reports[id]
	if ok {
		r = r.Clone()
	}
	hook := m.afterGet
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, apperrors.ErrNotFound)
	}
	if hook != nil {
		hook()
	}
	return r, nil
}

func (m *memoryStore) List(_ context.Context, f ListFilter) ([]Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Report
	for _, r := range m.reports {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Severity != "" && r.Severity != f.Severity {
			continue
		}
		if f.AuthorID != "" && r.AuthorID != f.AuthorID {
			continue
		}
		matched = append(matched, *r.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	page := pagination.New(f.Page, f.Limit, int64(len(matched)))
	start, end := page.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (m *memoryStore) All(_ context.Context) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, *r.Clone())
	}
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, report *Report, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	current, ok := m.reports[report.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Version != expectedVersion {
		return apperrors.ErrConflict
	}
	m.reports[report.ID] = report.Clone()
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var (
	citizen = &auth.Identity{ID: "u-1", Email: "citizen@example.org", DisplayName: "Citizen", Role: auth.RoleUser}
	ranger  = &auth.Identity{ID: "a-1", Email: "ranger@example.org", DisplayName: "Ranger", Role: auth.RoleAdmin}

	t0 = time.Date(2026, 4, 2, 6, 30, 0, 0, time.UTC)
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("r-%d", n)
	}
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Description: "Fresh stumps along the eastern bank",
		Location:    &Location{Lat: 21.95, Lng: 89.18},
	}
}
