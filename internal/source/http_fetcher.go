// Package source fetches the event dataset from the remote JSON endpoint.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/eventcal/internal/event"
)

const (
	DefaultURL            = "https://teg-coding-challenge.s3.ap-southeast-2.amazonaws.com/events/event-data.json"
	DefaultRequestTimeout = 10 * time.Second

	// maxErrorBodyLength bounds how much of a non-2xx response body ends up
	// in the attempt error.
	maxErrorBodyLength = 256
)

// AttemptObserver is called after every attempt with its 1-based number and
// its error, nil on success.
type AttemptObserver func(attempt uint, err error)

// HTTPFetcher fetches the dataset over HTTP and retries on a fixed schedule.
type HTTPFetcher struct {
	httpClient *resty.Client
	url        string
	timeout    time.Duration
	policy     RetryPolicy
	logger     *slog.Logger
	observers  []AttemptObserver
}

type FetcherOption func(*HTTPFetcher)

func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

func WithAttemptObserver(observer AttemptObserver) FetcherOption {
	return func(f *HTTPFetcher) {
		f.observers = append(f.observers, observer)
	}
}

func NewHTTPFetcher(url string, timeout time.Duration, policy RetryPolicy, opts ...FetcherOption) *HTTPFetcher {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	f := &HTTPFetcher{
		httpClient: client,
		url:        url,
		timeout:    timeout,
		policy:     policy,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPFetcher) Close() error {
	return f.httpClient.Close()
}

// FetchDataset implements Fetcher.
func (f *HTTPFetcher) FetchDataset(ctx context.Context) (event.Dataset, error) {
	var (
		result  event.Dataset
		attempt uint
	)
	err := retry.Do(
		func() error {
			attempt++
			f.logger.Info("Fetching event data from source", "attempt", attempt, "url", f.url)

			dataset, err := f.fetchOnce(ctx)
			f.notify(attempt, err)
			if err != nil {
				f.logger.Warn("Failed to fetch event data",
					"attempt", attempt,
					"error", err)
				return &AttemptError{Attempt: attempt, Err: err}
			}
			result = dataset
			return nil
		},
		append(f.policy.options(), retry.Context(ctx))...,
	)
	if err != nil {
		var attemptErr *AttemptError
		if errors.As(err, &attemptErr) {
			err = attemptErr.Err
		}
		return event.Dataset{}, &FetchError{Attempts: attempt, Err: err}
	}

	f.logger.Info("Successfully fetched event data",
		"events", len(result.Events),
		"venues", len(result.Venues))
	return result, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context) (event.Dataset, error) {
	response, err := f.httpClient.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return event.Dataset{}, fmt.Errorf("httpClient.Get > %w", err)
	}
	if !response.IsSuccess() {
		return event.Dataset{}, fmt.Errorf("response error %d: %s", response.StatusCode(), truncateBody(response.String()))
	}

	dataset, err := Decode([]byte(response.String()))
	if err != nil {
		return event.Dataset{}, fmt.Errorf("Decode > %w", err)
	}

	return event.Clean(dataset), nil
}

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxErrorBodyLength {
		return body
	}
	cut := maxErrorBodyLength
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (%d bytes truncated)", body[:cut], len(body)-cut)
}

func (f *HTTPFetcher) notify(attempt uint, err error) {
	for _, observer := range f.observers {
		observer(attempt, err)
	}
}

// Decode parses the source document. Field names match case-insensitively,
// unknown fields are ignored, and null or missing fields keep their zero value.
func Decode(body []byte) (event.Dataset, error) {
	var dataset event.Dataset
	if err := json.Unmarshal(body, &dataset); err != nil {
		return event.Dataset{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return dataset, nil
}
