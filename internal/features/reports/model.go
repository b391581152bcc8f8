package reports

import (
	"time"
)

// Severity grades the damage a report describes.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Status is the review state of a report.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}

// Location is the incident site in decimal degrees.
type Location struct {
	Lat float64 `bson:"lat" json:"lat" example:"21.9497"`
	Lng float64 `bson:"lng" json:"lng" example:"89.1833"`
}

// Valid reports whether l is a coordinate pair on the globe.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// StatusChange is one entry of a report's audit trail.
type StatusChange struct {
	From    Status    `bson:"from" json:"from"`
	To      Status    `bson:"to" json:"to"`
	ActorID string    `bson:"actorId" json:"actorId"`
	At      time.Time `bson:"at" json:"at"`
}

// Report is a submitted incident. ID, AuthorID, Location and SubmittedAt
// never change after creation; Status changes only through Engine.Transition.
type Report struct {
	ID          string         `bson:"_id" json:"id"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description" json:"description"`
	Severity    Severity       `bson:"severity" json:"severity"`
	Status      Status         `bson:"status" json:"status"`
	Location    Location       `bson:"location" json:"location"`
	AuthorID    string         `bson:"authorId" json:"authorId"`
	HasPhoto    bool           `bson:"hasPhoto" json:"hasPhoto"`
	SubmittedAt time.Time      `bson:"submittedAt" json:"submittedAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
	Version     int64          `bson:"version" json:"version"`
	History     []StatusChange `bson:"history" json:"history"`
}

// Clone returns a deep copy of r.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	if r.History != nil {
		out.History = make([]StatusChange, len(r.History))
		copy(out.History, r.History)
	}
	return &out
}

// SubmitRequest is the payload of a new report. Location is required.
type SubmitRequest struct {
	Title       string    `json:"title,omitempty" example:"Illegal cutting near the creek"`
	Description string    `json:"description" example:"Around twenty trees felled overnight"`
	Severity    Severity  `json:"severity,omitempty" example:"moderate"`
	Location    *Location `json:"location"`
	HasPhoto    bool      `json:"hasPhoto,omitempty"`
}

// TransitionRequest asks for a report to move to Status.
type TransitionRequest struct {
	Status Status `json:"status" example:"investigating"`
}

// ListFilter narrows a report listing. Zero values match everything.
type ListFilter struct {
	Status   Status
	Severity Severity
	AuthorID string
	Page     int
	Limit    int
}
