package google

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
)

// pageSize is requested on every page. Offset pagination also uses it to
// detect the last page; the server decides the real size for cursor pages.
const pageSize = 500

// offsetPage fetches maxResults items starting at the 1-based startIndex.
type offsetPage[T any] func(ctx context.Context, startIndex, maxResults int) ([]T, error)

// walkOffset requests pages until one comes back shorter than pageSize. A
// collection whose size is a multiple of pageSize therefore ends with one
// empty page.
func walkOffset[T any](ctx context.Context, logger *slog.Logger, fetch offsetPage[T]) ([]T, error) {
	results := make([]T, 0)
	startIndex := 1
	for {
		page, err := fetch(ctx, startIndex, pageSize)
		if err != nil {
			return nil, err
		}
		logger.Debug("Fetched feed page", "startIndex", startIndex, "count", len(page))

		results = append(results, page...)
		startIndex += len(page)
		if len(page) < pageSize {
			return results, nil
		}
	}
}

// cursorPage fetches the page identified by pageToken ("" for the first) and
// returns the token of the next one ("" when there is none).
type cursorPage[T any] func(ctx context.Context, pageToken string) ([]T, string, error)

// walkCursor follows continuation tokens until the server stops sending one.
func walkCursor[T any](ctx context.Context, logger *slog.Logger, fetch cursorPage[T]) ([]T, error) {
	results := make([]T, 0)
	pageToken := ""
	for {
		page, next, err := fetch(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		logger.Debug("Fetched page", "count", len(page), "hasNext", next != "")

		results = append(results, page...)
		if next == "" {
			return results, nil
		}
		pageToken = next
	}
}

func offsetParams(base url.Values, startIndex, maxResults int) url.Values {
	q := make(url.Values, len(base)+2)
	for k, v := range base {
		q[k] = v
	}
	q.Set("start-index", strconv.Itoa(startIndex))
	q.Set("max-results", strconv.Itoa(maxResults))
	return q
}

func cursorParams(base url.Values, pageToken string) url.Values {
	q := make(url.Values, len(base)+2)
	for k, v := range base {
		q[k] = v
	}
	q.Set("maxResults", strconv.Itoa(pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return q
}
