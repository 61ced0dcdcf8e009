package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/eventcal/internal/event"
)

type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

var (
	_                pflag.Value = (*OutputFormat)(nil)
	allOutputFormats             = []OutputFormat{OutputFormatTable, OutputFormatJSON, OutputFormatYAML}
)

func (f *OutputFormat) Set(val string) error {
	for _, format := range allOutputFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s", val)
}

func (f OutputFormat) String() string {
	return string(f)
}

func (f *OutputFormat) Type() string {
	return "format"
}

// printer writes records in one output format. Table rows flagged by
// highlight are printed in yellow.
type printer struct {
	w      io.Writer
	format OutputFormat
	header *color.Color
	warn   *color.Color
}

func newPrinter(w io.Writer, format OutputFormat) *printer {
	return &printer{
		w:      w,
		format: format,
		header: color.New(color.Bold),
		warn:   color.New(color.FgYellow),
	}
}

func (p *printer) encode(v any) error {
	switch p.format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(p.w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("json.Encode > %w", err)
		}
		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(p.w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("yaml.Encode > %w", err)
		}
		return encoder.Close()
	}
	return fmt.Errorf("unsupported output format: %s", p.format)
}

// table aligns the cells with tabwriter first and colors whole lines
// afterwards, so escape codes do not skew the column widths.
func (p *printer) table(header []string, rows [][]string, highlight []bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("tabwriter.Flush > %w", err)
	}

	scanner := bufio.NewScanner(&buf)
	for i := 0; scanner.Scan(); i++ {
		line := scanner.Text()
		var err error
		switch {
		case i == 0:
			_, err = p.header.Fprintln(p.w, line)
		case highlight != nil && highlight[i-1]:
			_, err = p.warn.Fprintln(p.w, line)
		default:
			_, err = fmt.Fprintln(p.w, line)
		}
		if err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return scanner.Err()
}

func (p *printer) events(events []event.RawEvent) error {
	if p.format != OutputFormatTable {
		return p.encode(events)
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			e.Name,
			e.StartDate,
			strconv.Itoa(e.VenueID),
		})
	}
	return p.table([]string{"ID", "NAME", "START", "VENUE"}, rows, nil)
}

func (p *printer) venues(venues []event.RawVenue) error {
	if p.format != OutputFormatTable {
		return p.encode(venues)
	}
	rows := make([][]string, 0, len(venues))
	for _, v := range venues {
		rows = append(rows, []string{
			strconv.Itoa(v.ID),
			v.Name,
			v.Location,
			strconv.Itoa(v.Capacity),
		})
	}
	return p.table([]string{"ID", "NAME", "LOCATION", "CAPACITY"}, rows, nil)
}

func (p *printer) enriched(events []event.EnrichedEvent) error {
	if p.format != OutputFormatTable {
		return p.encode(events)
	}
	rows := make([][]string, 0, len(events))
	unknown := make([]bool, 0, len(events))
	for _, e := range events {
		start := "-"
		if !e.StartDate.IsZero() {
			start = e.StartDate.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			e.Name,
			start,
			e.VenueName,
			e.VenueLocation,
			strconv.Itoa(e.VenueCapacity),
		})
		unknown = append(unknown, e.VenueName == event.UnknownVenueName)
	}
	return p.table([]string{"ID", "NAME", "START", "VENUE", "LOCATION", "CAPACITY"}, rows, unknown)
}
