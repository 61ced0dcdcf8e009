package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eventcal/internal/event"
)

// eventLister is the part of service.Service the listing commands use.
type eventLister interface {
	ListEvents(ctx context.Context) ([]event.RawEvent, error)
	ListVenues(ctx context.Context) ([]event.RawVenue, error)
	ListEventsByVenue(ctx context.Context, venueID int) ([]event.RawEvent, error)
	ListEnrichedEvents(ctx context.Context) ([]event.EnrichedEvent, error)
}

// withLister builds the service from the config, runs fn and closes the fetcher.
func withLister(fn func(lister eventLister) error) error {
	svc, fetcher, err := newService(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = fetcher.Close()
	}()
	return fn(svc)
}

func addFormatFlag(cmd *cobra.Command, format *OutputFormat) {
	cmd.Flags().Var(format, "format", fmt.Sprintf("Output format. Possible values are %v", allOutputFormats))
}

func newEventsCommand() *cobra.Command {
	format := OutputFormatTable
	var venueID int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events in source order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			venueSet := cmd.Flags().Changed("venue")
			return withLister(func(lister eventLister) error {
				return runEvents(cmd.Context(), cmd.OutOrStdout(), lister, format, venueID, venueSet)
			})
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().IntVar(&venueID, "venue", 0, "Only list events held at this venue id")
	return cmd
}

func runEvents(ctx context.Context, w io.Writer, lister eventLister, format OutputFormat, venueID int, byVenue bool) error {
	var (
		events []event.RawEvent
		err    error
	)
	if byVenue {
		events, err = lister.ListEventsByVenue(ctx, venueID)
	} else {
		events, err = lister.ListEvents(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	return newPrinter(w, format).events(events)
}

func newVenuesCommand() *cobra.Command {
	format := OutputFormatTable
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLister(func(lister eventLister) error {
				return runVenues(cmd.Context(), cmd.OutOrStdout(), lister, format)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func runVenues(ctx context.Context, w io.Writer, lister eventLister, format OutputFormat) error {
	venues, err := lister.ListVenues(ctx)
	if err != nil {
		return fmt.Errorf("failed to list venues: %w", err)
	}
	return newPrinter(w, format).venues(venues)
}

func newEnrichedCommand() *cobra.Command {
	format := OutputFormatTable
	cmd := &cobra.Command{
		Use:   "enriched",
		Short: "List events joined with their venues, ordered by start date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLister(func(lister eventLister) error {
				return runEnriched(cmd.Context(), cmd.OutOrStdout(), lister, format)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func runEnriched(ctx context.Context, w io.Writer, lister eventLister, format OutputFormat) error {
	events, err := lister.ListEnrichedEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list enriched events: %w", err)
	}
	return newPrinter(w, format).enriched(events)
}
