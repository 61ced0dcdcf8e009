package event

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC 3339 in UTC",
			input: "2024-12-01T19:00:00Z",
			want:  time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC 3339 with offset is normalized to UTC",
			input: "2024-12-01T19:00:00+11:00",
			want:  time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC 3339 with fractional seconds",
			input: "2024-12-01T19:00:00.250Z",
			want:  time.Date(2024, 12, 1, 19, 0, 0, 250_000_000, time.UTC),
		},
		{
			name:  "local date time without offset",
			input: "2024-12-01T19:00:00",
			want:  time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name:  "date time without seconds",
			input: "2024-12-01T19:30",
			want:  time.Date(2024, 12, 1, 19, 30, 0, 0, time.UTC),
		},
		{
			name:  "space separated date time",
			input: "2024-12-01 19:00:00",
			want:  time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only with surrounding spaces",
			input: " 2024-12-01 ",
			want:  time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "next tuesday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStartDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEnrich(t *testing.T) {
	description := "Great show"
	tests := []struct {
		name    string
		dataset Dataset
		want    []EnrichedEvent
	}{
		{
			name: "joins events with venues",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 1, Name: "Concert", Description: &description, StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
				},
				Venues: []RawVenue{
					{ID: 1, Name: "Sydney Opera House", Capacity: 5000, Location: "Sydney, NSW"},
				},
			},
			want: []EnrichedEvent{
				{
					ID:            1,
					Name:          "Concert",
					Description:   &description,
					StartDate:     time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC),
					VenueID:       1,
					VenueName:     "Sydney Opera House",
					VenueLocation: "Sydney, NSW",
					VenueCapacity: 5000,
				},
			},
		},
		{
			name: "orphaned event gets unknown venue defaults",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 1, Name: "Orphaned Event", StartDate: "2024-12-01T19:00:00Z", VenueID: 999},
				},
				Venues: []RawVenue{
					{ID: 1, Name: "Test Venue", Capacity: 1000, Location: "Sydney"},
				},
			},
			want: []EnrichedEvent{
				{
					ID:            1,
					Name:          "Orphaned Event",
					StartDate:     time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC),
					VenueID:       999,
					VenueName:     "Unknown Venue",
					VenueLocation: "Unknown Location",
					VenueCapacity: 0,
				},
			},
		},
		{
			name: "sorts by start date",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 1, Name: "Event C", StartDate: "2024-12-03T19:00:00Z", VenueID: 1},
					{ID: 2, Name: "Event A", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
					{ID: 3, Name: "Event B", StartDate: "2024-12-02T19:00:00Z", VenueID: 1},
				},
				Venues: []RawVenue{
					{ID: 1, Name: "Test Venue", Capacity: 1000, Location: "Sydney"},
				},
			},
			want: []EnrichedEvent{
				{ID: 2, Name: "Event A", StartDate: time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Test Venue", VenueLocation: "Sydney", VenueCapacity: 1000},
				{ID: 3, Name: "Event B", StartDate: time.Date(2024, 12, 2, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Test Venue", VenueLocation: "Sydney", VenueCapacity: 1000},
				{ID: 1, Name: "Event C", StartDate: time.Date(2024, 12, 3, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Test Venue", VenueLocation: "Sydney", VenueCapacity: 1000},
			},
		},
		{
			name: "later duplicate venue wins",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 1, Name: "Gig", StartDate: "2024-12-01", VenueID: 4},
				},
				Venues: []RawVenue{
					{ID: 4, Name: "Old Hall", Capacity: 10, Location: "Perth"},
					{ID: 4, Name: "New Hall", Capacity: 20, Location: "Hobart"},
				},
			},
			want: []EnrichedEvent{
				{ID: 1, Name: "Gig", StartDate: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), VenueID: 4, VenueName: "New Hall", VenueLocation: "Hobart", VenueCapacity: 20},
			},
		},
		{
			name: "unparseable start date sorts first with the zero time",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 1, Name: "Dated", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
					{ID: 2, Name: "Undated", StartDate: "soon", VenueID: 1},
				},
			},
			want: []EnrichedEvent{
				{ID: 2, Name: "Undated", StartDate: time.Time{}, VenueID: 1, VenueName: "Unknown Venue", VenueLocation: "Unknown Location"},
				{ID: 1, Name: "Dated", StartDate: time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Unknown Venue", VenueLocation: "Unknown Location"},
			},
		},
		{
			name: "equal start dates keep dataset order",
			dataset: Dataset{
				Events: []RawEvent{
					{ID: 5, Name: "First", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
					{ID: 3, Name: "Second", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
					{ID: 4, Name: "Third", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
				},
			},
			want: []EnrichedEvent{
				{ID: 5, Name: "First", StartDate: time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Unknown Venue", VenueLocation: "Unknown Location"},
				{ID: 3, Name: "Second", StartDate: time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Unknown Venue", VenueLocation: "Unknown Location"},
				{ID: 4, Name: "Third", StartDate: time.Date(2024, 12, 1, 19, 0, 0, 0, time.UTC), VenueID: 1, VenueName: "Unknown Venue", VenueLocation: "Unknown Location"},
			},
		},
		{
			name:    "no events",
			dataset: Dataset{Venues: []RawVenue{{ID: 1, Name: "Empty Hall"}}},
			want:    []EnrichedEvent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(tt.dataset)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnrich_SortedForAnyPermutation(t *testing.T) {
	events := []RawEvent{
		{ID: 1, Name: "a", StartDate: "2024-12-05T10:00:00Z", VenueID: 1},
		{ID: 2, Name: "b", StartDate: "2024-11-30T10:00:00Z", VenueID: 2},
		{ID: 3, Name: "c", StartDate: "2024-12-05T09:59:59Z", VenueID: 1},
		{ID: 4, Name: "d", StartDate: "broken", VenueID: 3},
		{ID: 5, Name: "e", StartDate: "2025-01-01", VenueID: 1},
		{ID: 6, Name: "f", StartDate: "2024-12-05T10:00:00Z", VenueID: 9},
	}
	venues := []RawVenue{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := make([]RawEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Enrich(Dataset{Events: shuffled, Venues: venues})

		require.Len(t, got, len(events))
		for j := 1; j < len(got); j++ {
			assert.False(t, got[j].StartDate.Before(got[j-1].StartDate),
				"event %d starts before event %d", got[j].ID, got[j-1].ID)
		}
		for _, e := range got {
			if e.VenueID != 1 && e.VenueID != 2 {
				assert.Equal(t, UnknownVenueName, e.VenueName)
				assert.Equal(t, UnknownVenueLocation, e.VenueLocation)
				assert.Zero(t, e.VenueCapacity)
			}
		}
	}
}

func TestEventsByVenue(t *testing.T) {
	events := []RawEvent{
		{ID: 1, Name: "Event 1", StartDate: "2024-12-01T19:00:00Z", VenueID: 1},
		{ID: 2, Name: "Event 2", StartDate: "2024-12-02T19:00:00Z", VenueID: 2},
		{ID: 3, Name: "Event 3", StartDate: "2024-12-03T19:00:00Z", VenueID: 1},
	}

	tests := []struct {
		name    string
		venueID int
		wantIDs []int
	}{
		{name: "venue with two events keeps order", venueID: 1, wantIDs: []int{1, 3}},
		{name: "venue with one event", venueID: 2, wantIDs: []int{2}},
		{name: "venue without events", venueID: 42, wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EventsByVenue(events, tt.venueID)
			require.NotNil(t, got)
			ids := make([]int, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
