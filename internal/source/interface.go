package source

import (
	"context"

	"github.com/at-ishikawa/eventcal/internal/event"
)

//go:generate mockgen -source=interface.go -destination=../mocks/source/mock_fetcher.go -package=mock_source

// Fetcher retrieves one validated dataset from the remote source.
type Fetcher interface {
	FetchDataset(ctx context.Context) (event.Dataset, error)
}
