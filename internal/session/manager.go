package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// ErrSuperseded is returned by Login when another login, a logout or a
// token rejection started after it; its result is discarded.
var ErrSuperseded = errors.New("session: login superseded by a newer session change")

// Manager owns the process-wide session. The zero value is not usable;
// create one with NewManager.
type Manager struct {
	identity IdentityService
	store    CredentialStore
	clock    clock.Clock
	log      *logger.Logger

	// mu serializes session mutations. ticket is bumped by every
	// mutation that starts, so a login can tell whether anything
	// started after it.
	mu     sync.Mutex
	ticket uint64

	current atomic.Pointer[Session]
}

func NewManager(identity IdentityService, store CredentialStore, clk clock.Clock, log *logger.Logger) *Manager {
	if clk == nil {
		clk = clock.System()
	}
	return &Manager{
		identity: identity,
		store:    store,
		clock:    clk,
		log:      logger.OrDefault(log).With("session"),
	}
}

// Register creates an account. It does not establish a session: the
// caller logs in with the new credentials afterwards.
func (m *Manager) Register(ctx context.Context, req auth.RegisterRequest) (*RegistrationResult, error) {
	if err := CheckRegistration(&req); err != nil {
		return nil, err
	}

	result, err := m.identity.Register(ctx, req)
	if err != nil {
		return nil, asIdentityServiceError(err, "Registration failed")
	}
	return result, nil
}

// CheckRegistration runs the local preconditions of Register without
// contacting the identity service.
func CheckRegistration(req *auth.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return apperrors.NewValidation("email", "email is required")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return apperrors.NewValidation("fullname", "full name is required")
	}
	if req.Password == "" {
		return apperrors.NewValidation("password", "password is required")
	}
	return auth.CheckRegistrationPreconditions(req)
}

// Login authenticates against the identity service and, on success,
// persists and installs the new session. On any failure the current
// session is left as it was.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" {
		return nil, apperrors.NewValidation("email", "email is required")
	}
	if creds.Password == "" {
		return nil, apperrors.NewValidation("password", "password is required")
	}

	ticket := m.begin()

	result, err := m.identity.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthentication) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, asIdentityServiceError(err, "Login failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if result == nil {
		return nil, &apperrors.IdentityServiceError{Message: "identity service returned an empty login response"}
	}
	s := &Session{
		Identity: result.Identity,
		Token:    result.Token,
		IssuedAt: m.clock.Now(),
	}
	if !s.WellFormed() {
		return nil, &apperrors.IdentityServiceError{Message: "identity service returned an incomplete login response"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticket != ticket {
		m.log.Debug("discarding login for %s: superseded", s.Identity.Email)
		return nil, ErrSuperseded
	}

	if err := m.store.Set(*s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.current.Store(s)
	m.log.Info("logged in as %s (%s)", s.Identity.Email, s.Identity.Role)

	return s.clone(), nil
}

// Logout drops the current session and purges the store. Logging out
// without a session is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticket++
	m.clearLocked()
}

// Reject handles the identity service refusing token. The session is
// dropped only if token is still the current one; it reports whether it was.
func (m *Manager) Reject(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.current.Load()
	if current == nil || current.Token != token {
		return false
	}

	m.ticket++
	m.log.Warn("token for %s was rejected, signing out", current.Identity.Email)
	m.clearLocked()
	return true
}

// RestoreFromStore installs the stored session, if it is well formed.
// It only acts when no session is active. Absent or corrupt data leaves
// the manager unauthenticated; corrupt data is purged.
func (m *Manager) RestoreFromStore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Load() != nil {
		return
	}
	m.ticket++

	stored, ok := m.readStore()
	if !ok {
		return
	}
	if !stored.WellFormed() {
		m.log.Warn("ignoring malformed stored credentials")
		if err := m.store.Clear(); err != nil {
			m.log.Warn("purge malformed credentials: %v", err)
		}
		return
	}

	m.current.Store(stored.clone())
	m.log.Debug("restored session for %s", stored.Identity.Email)
}

// CurrentSession returns a copy of the active session, or nil.
func (m *Manager) CurrentSession() *Session {
	return m.current.Load().clone()
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.current.Load() != nil
}

func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket++
	return m.ticket
}

func (m *Manager) clearLocked() {
	m.current.Store(nil)
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clear stored credentials: %v", err)
	}
}

func (m *Manager) readStore() (s *Session, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn("credential store failed: %v", r)
			s, ok = nil, false
		}
	}()
	return m.store.Get()
}

func asIdentityServiceError(err error, fallback string) error {
	var svcErr *apperrors.IdentityServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Message == "" {
			return &apperrors.IdentityServiceError{Message: fallback, StatusCode: svcErr.StatusCode, Err: svcErr.Err}
		}
		return svcErr
	}
	if errors.Is(err, apperrors.ErrValidation) {
		return err
	}
	return &apperrors.IdentityServiceError{Message: fallback, Err: err}
}
