package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/xyz-asif/mangrovewatch/internal/access"
	"github.com/xyz-asif/mangrovewatch/internal/client"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/session"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// ErrNotLoggedIn is returned by commands that need a session when none exists.
var ErrNotLoggedIn = errors.New("not logged in, run `mangrove login` first")

// ErrSessionExpired is returned when the server rejected the stored token.
var ErrSessionExpired = errors.New("session expired, run `mangrove login` again")

// App is one invocation of the terminal client.
type App struct {
	cfg     Config
	api     *client.Client
	session *session.Manager
	out     io.Writer
	in      *bufio.Reader
	log     *logger.Logger
}

// NewApp wires the client and restores the stored session.
func NewApp(cfg Config, out, errOut io.Writer, in io.Reader) *App {
	log := logger.New(logger.ParseLevel(cfg.LogLevel), errOut)
	api := client.New(cfg.Server, cfg.Timeout)
	manager := session.NewManager(api, session.NewFileStore(cfg.Credentials), nil, log)
	manager.RestoreFromStore()

	return &App{
		cfg:     cfg,
		api:     api,
		session: manager,
		out:     out,
		in:      bufio.NewReader(in),
		log:     log.With("cli"),
	}
}

// gate checks req against the current session. A PublicOnly denial is
// not an error: the caller is shown who they are logged in as instead,
// and proceed is false.
func (a *App) gate(req access.Requirement) (proceed bool, err error) {
	current := a.session.CurrentSession()
	decision := access.AuthorizeSession(current, req)
	if decision.Allowed {
		return true, nil
	}

	switch decision.Reason {
	case access.ReasonAlreadyAuthed:
		fmt.Fprintf(a.out, "Already logged in as %s (%s). Run `mangrove logout` to switch accounts.\n",
			current.Identity.Email, current.Identity.Role)
		return false, nil
	case access.ReasonNotAuthenticated:
		return false, ErrNotLoggedIn
	default:
		return false, &apperrors.AuthorizationError{Message: fmt.Sprintf("this command requires %s", req)}
	}
}

// authed runs call with the current token. A token refused by the server
// ends the session.
func (a *App) authed(call func(token string) error) error {
	current := a.session.CurrentSession()
	if current == nil {
		return ErrNotLoggedIn
	}

	err := call(current.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		if a.session.Reject(current.Token) {
			a.log.Debug("stored token rejected, credentials cleared")
		}
		return ErrSessionExpired
	}
	return err
}
