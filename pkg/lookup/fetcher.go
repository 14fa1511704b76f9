package lookup

import (
	"context"
	"errors"
	"net/http"

	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/schema"
)

// AsFetcher serves a Store in-process through the fetcher contract. Unknown
// categories surface as a 404 status failure, as they would over HTTP.
func AsFetcher(store Store) fetcher.Fetcher {
	return fetcher.FetcherFunc(func(ctx context.Context, categoryID string) (schema.Schema, error) {
		if categoryID == "" {
			return nil, fetcher.ErrCategoryRequired
		}
		groups, err := store.AttributesFor(ctx, categoryID)
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			return nil, &fetcher.FetchError{CategoryID: categoryID, Kind: fetcher.FailureStatus, Status: http.StatusNotFound, Err: err}
		case err != nil:
			return nil, &fetcher.FetchError{CategoryID: categoryID, Kind: fetcher.FailureNetwork, Err: err}
		}
		return groups, nil
	})
}
