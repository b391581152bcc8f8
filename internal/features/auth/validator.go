package auth

import (
	"regexp"
	"strings"

	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

var (
	emailRegex  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobileRegex = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
)

// NormalizeRole defaults an empty role to RoleUser.
func NormalizeRole(role Role) Role {
	if role == "" {
		return RoleUser
	}
	return Role(strings.ToLower(strings.TrimSpace(string(role))))
}

// CheckRegistrationPreconditions runs the checks every caller performs
// before contacting the identity service: matching passwords and a
// recognized role. It normalizes req.Role in place.
func CheckRegistrationPreconditions(req *RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return apperrors.NewValidation("confirmPassword", "passwords do not match")
	}

	req.Role = NormalizeRole(req.Role)
	if !req.Role.Valid() {
		return apperrors.NewValidation("role", "role must be one of: user, admin")
	}

	return nil
}

// ValidateRegister validates a registration on the identity service side
func ValidateRegister(req *RegisterRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.Mobile = strings.TrimSpace(req.Mobile)

	if err := ValidateEmail(req.Email); err != nil {
		return err
	}

	if len(req.FullName) < 2 || len(req.FullName) > 60 {
		return apperrors.NewValidation("fullname", "full name must be between 2 and 60 characters")
	}

	if len(req.Password) < minPasswordLength {
		return apperrors.NewValidation("password", "password must be at least 8 characters long")
	}
	if len(req.Password) > maxPasswordLength {
		return apperrors.NewValidation("password", "password cannot exceed 72 characters")
	}

	if req.Mobile != "" && !mobileRegex.MatchString(req.Mobile) {
		return apperrors.NewValidation("mobile", "mobile number format is invalid")
	}

	return CheckRegistrationPreconditions(req)
}

// ValidateLogin validates the login payload
func ValidateLogin(req *LoginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" {
		return apperrors.NewValidation("email", "email is required")
	}
	if req.Password == "" {
		return apperrors.NewValidation("password", "password is required")
	}
	return nil
}

// ValidateEmail checks the email format
func ValidateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidation("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return apperrors.NewValidation("email", "email format is invalid")
	}
	return nil
}
