// Package access holds the single authorization predicate every call site
// goes through. Callers state what they require; the gate decides.
package access

import (
	"fmt"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/session"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

// Kind tags a Requirement.
type Kind int

const (
	// KindPublicOnly admits only callers without a session.
	KindPublicOnly Kind = iota + 1
	// KindAnyAuthenticated admits any caller with a session.
	KindAnyAuthenticated
	// KindRoleAtLeast admits callers whose role is at least Role.
	KindRoleAtLeast
)

// Requirement is what a route or action needs from its caller.
type Requirement struct {
	Kind Kind
	Role auth.Role
}

func PublicOnly() Requirement       { return Requirement{Kind: KindPublicOnly} }
func AnyAuthenticated() Requirement { return Requirement{Kind: KindAnyAuthenticated} }
func RoleAtLeast(role auth.Role) Requirement {
	return Requirement{Kind: KindRoleAtLeast, Role: role}
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindPublicOnly:
		return "PublicOnly"
	case KindAnyAuthenticated:
		return "AnyAuthenticated"
	case KindRoleAtLeast:
		return fmt.Sprintf("RoleAtLeast(%s)", r.Role)
	default:
		return fmt.Sprintf("Requirement(%d)", int(r.Kind))
	}
}

// Reason explains a denial.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonAlreadyAuthed      Reason = "already_authenticated"
	ReasonNotAuthenticated   Reason = "not_authenticated"
	ReasonInsufficientRole   Reason = "insufficient_role"
	ReasonUnknownRequirement Reason = "unknown_requirement"
)

// Decision is the gate's answer.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

// Err converts a denial into the matching taxonomy error; nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonNotAuthenticated:
		return &apperrors.AuthenticationError{Message: "authentication required"}
	default:
		return &apperrors.AuthorizationError{}
	}
}

// Authorize decides whether the caller identified by identity (nil when
// anonymous) satisfies req. It has no side effects and always returns.
// An unknown requirement is denied.
func Authorize(identity *auth.Identity, req Requirement) Decision {
	authenticated := identity != nil

	switch req.Kind {
	case KindPublicOnly:
		if authenticated {
			return deny(ReasonAlreadyAuthed)
		}
		return allow()
	case KindAnyAuthenticated:
		if !authenticated {
			return deny(ReasonNotAuthenticated)
		}
		return allow()
	case KindRoleAtLeast:
		if !req.Role.Valid() {
			return deny(ReasonUnknownRequirement)
		}
		if !authenticated {
			return deny(ReasonNotAuthenticated)
		}
		if !identity.Role.AtLeast(req.Role) {
			return deny(ReasonInsufficientRole)
		}
		return allow()
	default:
		return deny(ReasonUnknownRequirement)
	}
}

// AuthorizeSession is Authorize over a session; nil means unauthenticated.
func AuthorizeSession(s *session.Session, req Requirement) Decision {
	if s == nil {
		return Authorize(nil, req)
	}
	identity := s.Identity
	return Authorize(&identity, req)
}
