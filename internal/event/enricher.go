package event

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

var startDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseStartDate parses a start date in one of the accepted layouts.
// Values without an offset are read as UTC.
func ParseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported start date: %q", s)
}

// Enrich joins every event with its venue and returns the result ordered by
// start date. When the dataset repeats a venue id, the later venue wins.
// Events without a known venue get the Unknown* defaults and capacity 0, and
// events whose start date cannot be parsed sort first with the zero time.
// Events with equal start dates keep their dataset order.
func Enrich(ds Dataset) []EnrichedEvent {
	venues := make(map[int]RawVenue, len(ds.Venues))
	for _, v := range ds.Venues {
		venues[v.ID] = v
	}

	enriched := make([]EnrichedEvent, 0, len(ds.Events))
	for _, e := range ds.Events {
		startDate, err := ParseStartDate(e.StartDate)
		if err != nil {
			slog.Default().Warn("Failed to parse start date",
				"eventId", e.ID,
				"startDate", e.StartDate)
		}

		ee := EnrichedEvent{
			ID:            e.ID,
			Name:          e.Name,
			Description:   e.Description,
			StartDate:     startDate,
			VenueID:       e.VenueID,
			VenueName:     UnknownVenueName,
			VenueLocation: UnknownVenueLocation,
		}
		if v, ok := venues[e.VenueID]; ok {
			ee.VenueName = v.Name
			ee.VenueLocation = v.Location
			ee.VenueCapacity = v.Capacity
		}
		enriched = append(enriched, ee)
	}

	slices.SortStableFunc(enriched, func(a, b EnrichedEvent) int {
		return a.StartDate.Compare(b.StartDate)
	})
	return enriched
}

// EventsByVenue returns the events held at the given venue, in dataset order.
func EventsByVenue(events []RawEvent, venueID int) []RawEvent {
	filtered := make([]RawEvent, 0)
	for _, e := range events {
		if e.VenueID == venueID {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
