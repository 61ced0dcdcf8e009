package event

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validate.RegisterValidation(notblank) > %v", err))
	}
	return validate
}

// CleanReport holds how many records Filter dropped.
type CleanReport struct {
	DroppedEvents int
	DroppedVenues int
}

// Dropped returns the total number of dropped records.
func (r CleanReport) Dropped() int {
	return r.DroppedEvents + r.DroppedVenues
}

// IsValidEvent reports whether the event has a positive id and venue id
// and non-blank name and start date.
func IsValidEvent(e RawEvent) bool {
	if err := recordValidator.Struct(e); err != nil {
		slog.Default().Debug("invalid event",
			"id", e.ID,
			"error", err)
		return false
	}
	return true
}

// IsValidVenue reports whether the venue has a positive id and a non-blank name.
func IsValidVenue(v RawVenue) bool {
	if err := recordValidator.Struct(v); err != nil {
		slog.Default().Debug("invalid venue",
			"id", v.ID,
			"error", err)
		return false
	}
	return true
}

// Filter drops invalid events and venues, keeping the order of the rest.
func Filter(ds Dataset) (Dataset, CleanReport) {
	events := make([]RawEvent, 0, len(ds.Events))
	for _, e := range ds.Events {
		if IsValidEvent(e) {
			events = append(events, e)
		}
	}
	venues := make([]RawVenue, 0, len(ds.Venues))
	for _, v := range ds.Venues {
		if IsValidVenue(v) {
			venues = append(venues, v)
		}
	}

	return Dataset{Events: events, Venues: venues}, CleanReport{
		DroppedEvents: len(ds.Events) - len(events),
		DroppedVenues: len(ds.Venues) - len(venues),
	}
}

// Clean is Filter with the dropped counts logged instead of returned.
func Clean(ds Dataset) Dataset {
	cleaned, report := Filter(ds)
	LogReport(report)
	return cleaned
}

// LogReport writes a warning for every non-zero count in the report.
func LogReport(report CleanReport) {
	if report.DroppedEvents > 0 {
		slog.Default().Warn("Filtered out invalid events", "count", report.DroppedEvents)
	}
	if report.DroppedVenues > 0 {
		slog.Default().Warn("Filtered out invalid venues", "count", report.DroppedVenues)
	}
}
