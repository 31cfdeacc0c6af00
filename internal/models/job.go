package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a job post
type JobStatus string

const (
	JobStatusOpen    JobStatus = "open"
	JobStatusMatched JobStatus = "matched"
	JobStatusClosed  JobStatus = "closed"
)

// Job validation errors
var (
	ErrStartInPast        = errors.New("start date must be in the future")
	ErrEndBeforeStart     = errors.New("end date must be after start date")
	ErrMissingServiceType = errors.New("service type is required")
)

// JobPost represents a care request posted by a dog owner
type JobPost struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	OwnerUID    string      `json:"owner_uid" db:"owner_uid"`
	OwnerName   string      `json:"owner_name" db:"owner_name"`
	ServiceType ServiceType `json:"service_type" db:"service_type"`
	Description string      `json:"description" db:"description"`
	Location    *Location   `json:"location,omitempty"`
	Rate        string      `json:"rate" db:"rate"`
	RateType    RateType    `json:"rate_type" db:"rate_type"`
	StartDate   time.Time   `json:"start_date" db:"start_date"`
	EndDate     time.Time   `json:"end_date" db:"end_date"`
	Breeds      []string    `json:"breeds" db:"breeds"`
	Status      JobStatus   `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Validate checks the creation-time invariants of a job post. The start is
// compared against now truncated to the minute. It is meant for write paths
// only: search reads legacy rows as stored and never rejects a job for its
// dates, since every past job would otherwise fail the start check.
func (j *JobPost) Validate(now time.Time) error {
	if j.ServiceType == "" {
		return ErrMissingServiceType
	}
	if j.StartDate.Before(now.Truncate(time.Minute)) {
		return ErrStartInPast
	}
	if !j.EndDate.After(j.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}
