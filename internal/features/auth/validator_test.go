package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FullName:        "Mira Santos",
		Email:           "Mira@Example.org ",
		Password:        "mangroves4ever",
		ConfirmPassword: "mangroves4ever",
	}
}

func TestCheckRegistrationPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr bool
		field   string
	}{
		{name: "valid defaults role to user", mutate: func(r *RegisterRequest) {}},
		{name: "admin role accepted", mutate: func(r *RegisterRequest) { r.Role = "ADMIN" }},
		{name: "password mismatch", mutate: func(r *RegisterRequest) { r.ConfirmPassword = "other" }, wantErr: true, field: "confirmPassword"},
		{name: "unknown role", mutate: func(r *RegisterRequest) { r.Role = "ranger" }, wantErr: true, field: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)

			err := CheckRegistrationPreconditions(&req)
			if !tt.wantErr {
				require.NoError(t, err)
				require.True(t, req.Role.Valid())
				return
			}

			require.ErrorIs(t, err, apperrors.ErrValidation)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateRegister(t *testing.T) {
	req := validRegisterRequest()
	require.NoError(t, ValidateRegister(&req))
	require.Equal(t, "mira@example.org", req.Email)
	require.Equal(t, RoleUser, req.Role)

	short := validRegisterRequest()
	short.Password, short.ConfirmPassword = "short", "short"
	require.ErrorIs(t, ValidateRegister(&short), apperrors.ErrValidation)

	badEmail := validRegisterRequest()
	badEmail.Email = "not-an-email"
	require.ErrorIs(t, ValidateRegister(&badEmail), apperrors.ErrValidation)

	badMobile := validRegisterRequest()
	badMobile.Mobile = "call me"
	require.ErrorIs(t, ValidateRegister(&badMobile), apperrors.ErrValidation)
}

func TestRoleAtLeast(t *testing.T) {
	require.True(t, RoleAdmin.AtLeast(RoleUser))
	require.True(t, RoleAdmin.AtLeast(RoleAdmin))
	require.True(t, RoleUser.AtLeast(RoleUser))
	require.False(t, RoleUser.AtLeast(RoleAdmin))
	require.False(t, Role("ranger").AtLeast(RoleUser))
}
