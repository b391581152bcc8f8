package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/session"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

var (
	citizen = &auth.Identity{ID: "u1", Email: "c@example.org", Role: auth.RoleUser}
	ranger  = &auth.Identity{ID: "a1", Email: "r@example.org", Role: auth.RoleAdmin}
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		identity *auth.Identity
		req      Requirement
		allowed  bool
		reason   Reason
	}{
		{"public only, anonymous", nil, PublicOnly(), true, ReasonNone},
		{"public only, signed in", citizen, PublicOnly(), false, ReasonAlreadyAuthed},
		{"any authenticated, anonymous", nil, AnyAuthenticated(), false, ReasonNotAuthenticated},
		{"any authenticated, user", citizen, AnyAuthenticated(), true, ReasonNone},
		{"admin required, anonymous", nil, RoleAtLeast(auth.RoleAdmin), false, ReasonNotAuthenticated},
		{"admin required, user", citizen, RoleAtLeast(auth.RoleAdmin), false, ReasonInsufficientRole},
		{"admin required, admin", ranger, RoleAtLeast(auth.RoleAdmin), true, ReasonNone},
		{"user required, admin", ranger, RoleAtLeast(auth.RoleUser), true, ReasonNone},
		{"unknown role requirement", ranger, RoleAtLeast("superuser"), false, ReasonUnknownRequirement},
		{"zero requirement", ranger, Requirement{}, false, ReasonUnknownRequirement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.identity, tt.req)
			require.Equal(t, tt.allowed, d.Allowed)
			require.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestAuthorizeSession(t *testing.T) {
	require.True(t, AuthorizeSession(nil, PublicOnly()).Allowed)

	s := &session.Session{Identity: *ranger, Token: "t"}
	require.False(t, AuthorizeSession(s, PublicOnly()).Allowed)
	require.True(t, AuthorizeSession(s, RoleAtLeast(auth.RoleAdmin)).Allowed)
}

func TestDecisionErr(t *testing.T) {
	require.NoError(t, Authorize(ranger, AnyAuthenticated()).Err())
	require.ErrorIs(t, Authorize(nil, AnyAuthenticated()).Err(), apperrors.ErrAuthentication)
	require.ErrorIs(t, Authorize(citizen, RoleAtLeast(auth.RoleAdmin)).Err(), apperrors.ErrAuthorization)
}

func TestRequireMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		identity *auth.Identity
		status   int
		code     string
	}{
		{"anonymous", nil, http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"user", citizen, http.StatusForbidden, "FORBIDDEN"},
		{"admin", ranger, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.identity != nil {
					auth.SetIdentity(c, tt.identity)
				}
				c.Next()
			})
			r.GET("/admin", Require(RoleAtLeast(auth.RoleAdmin)), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			require.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, tt.code, body["code"])
			}
		})
	}
}
