package models

import (
	"fmt"
	"strings"
)

// ServiceType represents a kind of pet-care service
type ServiceType string

const (
	ServiceWalk         ServiceType = "walk"
	ServiceDaycare      ServiceType = "daycare"
	ServiceBoarding     ServiceType = "boarding"
	ServiceDropIn       ServiceType = "drop-in"
	ServiceTraining     ServiceType = "training"
	ServiceHouseSitting ServiceType = "house-sitting"
)

// AllServiceTypes lists every service type in canonical display order
var AllServiceTypes = []ServiceType{
	ServiceWalk,
	ServiceDaycare,
	ServiceBoarding,
	ServiceDropIn,
	ServiceTraining,
	ServiceHouseSitting,
}

// ParseServiceType validates a service type string. The empty string is
// returned as-is and means "any service".
func ParseServiceType(s string) (ServiceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, t := range AllServiceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

// Label returns a human readable name for the service type
func (t ServiceType) Label() string {
	switch t {
	case ServiceWalk:
		return "Dog Walking"
	case ServiceDaycare:
		return "Daycare"
	case ServiceBoarding:
		return "Boarding"
	case ServiceDropIn:
		return "Drop-in Visits"
	case ServiceTraining:
		return "Training"
	case ServiceHouseSitting:
		return "House Sitting"
	default:
		return string(t)
	}
}

// Emoji returns the marker glyph used for the service on maps and cards
func (t ServiceType) Emoji() string {
	switch t {
	case ServiceWalk:
		return "🦮"
	case ServiceDaycare:
		return "🏠"
	case ServiceBoarding:
		return "🛏️"
	default:
		return "🐕"
	}
}

// RateType represents how a rate is charged
type RateType string

const (
	RatePerHour RateType = "per_hour"
	RatePerDay  RateType = "per_day"
	RateFixed   RateType = "fixed"
)

// ParseRateType normalizes stored rate types. Legacy provider records carry
// "hour" and are treated as hourly; anything unknown falls back to hourly.
func ParseRateType(s string) RateType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per_day", "day", "daily":
		return RatePerDay
	case "fixed":
		return RateFixed
	default:
		return RatePerHour
	}
}

// Unit returns the suffix used in price labels
func (r RateType) Unit() string {
	switch r {
	case RatePerDay:
		return "day"
	case RateFixed:
		return "fixed"
	default:
		return "hour"
	}
}
