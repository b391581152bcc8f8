package session

import (
	"context"
	"errors"
	"sync"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// fakeIdentityService answers from a password table. A login for an email
// listed in gates blocks until the gate channel is closed.
type fakeIdentityService struct {
	mu            sync.Mutex
	passwords     map[string]string
	identities    map[string]auth.Identity
	gates         map[string]chan struct{}
	registerErr   error
	loginErr      error
	registerCalls int
	loginCalls    int
}

func newFakeIdentityService() *fakeIdentityService {
	return &fakeIdentityService{
		passwords:  make(map[string]string),
		identities: make(map[string]auth.Identity),
		gates:      make(map[string]chan struct{}),
	}
}

func (f *fakeIdentityService) addUser(email, password string, role auth.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[email] = password
	f.identities[email] = auth.Identity{
		ID:          "id-" + email,
		Email:       email,
		DisplayName: "User " + email,
		Role:        role,
	}
}

func (f *fakeIdentityService) gate(email string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[email] = ch
	return ch
}

func (f *fakeIdentityService) Register(ctx context.Context, req auth.RegisterRequest) (*RegistrationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &RegistrationResult{Identity: auth.Identity{ID: "new", Email: req.Email, Role: req.Role}}, nil
}

func (f *fakeIdentityService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	f.mu.Lock()
	f.loginCalls++
	gate := f.gates[creds.Email]
	loginErr := f.loginErr
	password, known := f.passwords[creds.Email]
	identity := f.identities[creds.Email]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if loginErr != nil {
		return nil, loginErr
	}
	if !known || password != creds.Password {
		return nil, &apperrors.AuthenticationError{Message: "Invalid email or password"}
	}
	return &LoginResult{Token: "token-" + creds.Email, Identity: identity}, nil
}

// flakyStore wraps MemoryStore with injectable failures.
type flakyStore struct {
	MemoryStore
	setErr   error
	clearErr error
	panicky  bool
	clears   int
}

func (s *flakyStore) Get() (*Session, bool) {
	if s.panicky {
		panic("corrupt backing file")
	}
	return s.MemoryStore.Get()
}

func (s *flakyStore) Set(sess Session) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStore.Set(sess)
}

func (s *flakyStore) Clear() error {
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryStore.Clear()
}

var errDiskFull = errors.New("disk full")
