package reports

import (
	"strings"
	"unicode/utf8"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/pagination"
	apperrors "github.com/xyz-asif/mangrovewatch/pkg/errors"
)

const (
	maxDescriptionLength = 2000
	maxTitleLength       = 120
	derivedTitleLength   = 60
)

// ValidateSubmit checks a submission and fills defaults in place: an
// omitted severity becomes moderate and an empty title is taken from
// the start of the description.
func ValidateSubmit(req *SubmitRequest) error {
	req.Description = strings.TrimSpace(req.Description)
	req.Title = strings.TrimSpace(req.Title)

	if req.Description == "" {
		return apperrors.NewValidation("description", "description is required")
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLength {
		return apperrors.NewValidation("description", "description must be at most 2000 characters")
	}

	if req.Location == nil {
		return apperrors.NewValidation("location", "location is required")
	}
	if !req.Location.Valid() {
		return apperrors.NewValidation("location", "latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	if req.Severity == "" {
		req.Severity = SeverityModerate
	}
	req.Severity = Severity(strings.ToLower(string(req.Severity)))
	if !req.Severity.Valid() {
		return apperrors.NewValidation("severity", "severity must be one of: minor, moderate, severe")
	}

	if req.Title == "" {
		req.Title = deriveTitle(req.Description)
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return apperrors.NewValidation("title", "title must be at most 120 characters")
	}

	return nil
}

// ValidateTarget checks that a requested status is a known one.
func ValidateTarget(status Status) error {
	if !status.Valid() {
		return apperrors.NewValidation("status", "status must be one of: pending, investigating, resolved")
	}
	return nil
}

// ValidateFilter normalizes list paging and rejects unknown enum values.
func ValidateFilter(f *ListFilter) error {
	if f.Status != "" && !f.Status.Valid() {
		return apperrors.NewValidation("status", "unknown status")
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return apperrors.NewValidation("severity", "unknown severity")
	}
	f.Page, f.Limit = pagination.Normalize(f.Page, f.Limit)
	return nil
}

func deriveTitle(description string) string {
	line := description
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) <= derivedTitleLength {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:derivedTitleLength])) + "..."
}
