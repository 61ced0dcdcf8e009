// Package event defines the event and venue records served by eventcal,
// together with the pure steps of the pipeline: validation and enrichment.
package event

import "time"

// RawEvent is an event as received from the source, before validation.
type RawEvent struct {
	ID          int     `json:"id" yaml:"id" validate:"gt=0"`
	Name        string  `json:"name" yaml:"name" validate:"notblank"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string  `json:"startDate" yaml:"startDate" validate:"notblank"`
	VenueID     int     `json:"venueId" yaml:"venueId" validate:"gt=0"`
}

// RawVenue is a venue as received from the source, before validation.
// Capacity may be zero when the source leaves it unset.
type RawVenue struct {
	ID       int    `json:"id" yaml:"id" validate:"gt=0"`
	Name     string `json:"name" yaml:"name" validate:"notblank"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Location string `json:"location" yaml:"location"`
}

// Dataset is the pair of event and venue sequences produced by one fetch.
// The order returned by the source is kept.
type Dataset struct {
	Events []RawEvent `json:"events" yaml:"events"`
	Venues []RawVenue `json:"venues" yaml:"venues"`
}

// IsEmpty reports whether the dataset has neither events nor venues.
func (d Dataset) IsEmpty() bool {
	return len(d.Events) == 0 && len(d.Venues) == 0
}

// EnrichedEvent is an event joined with the descriptive fields of its venue.
type EnrichedEvent struct {
	ID            int       `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   *string   `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate     time.Time `json:"startDate" yaml:"startDate"`
	VenueID       int       `json:"venueId" yaml:"venueId"`
	VenueName     string    `json:"venueName" yaml:"venueName"`
	VenueLocation string    `json:"venueLocation" yaml:"venueLocation"`
	VenueCapacity int       `json:"venueCapacity" yaml:"venueCapacity"`
}

// Defaults used when an event refers to a venue that is not in the dataset.
const (
	UnknownVenueName     = "Unknown Venue"
	UnknownVenueLocation = "Unknown Location"
)
