// Package pagination handles cursor-based paging parameters and metadata.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"hubspot-proxy/internal/common/errors"
)

// DefaultLimit is the page size used when none is requested
const DefaultLimit = 10

// MaxLimit is the largest page size accepted
const MaxLimit = 100

// Params represents cursor pagination parameters
type Params struct {
	Limit int    `json:"limit"`
	After string `json:"after,omitempty"`
}

// Metadata describes one page of a cursor-paginated result
type Metadata struct {
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"hasMore"`
	After   string `json:"after,omitempty"`
}

// ParseParams extracts limit and after from a query string. A missing limit
// defaults to DefaultLimit; anything outside 1..MaxLimit is rejected.
func ParseParams(query url.Values) (Params, error) {
	params := Params{
		Limit: DefaultLimit,
		After: query.Get("after"),
	}

	raw := strings.TrimSpace(query.Get("limit"))
	if raw == "" {
		return params, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return params, errors.ValidationError("limit must be an integer")
	}
	if limit < 1 || limit > MaxLimit {
		return params, errors.ValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	params.Limit = limit
	return params, nil
}

// NewMetadata builds page metadata. The next cursor is carried as given and
// its presence alone decides HasMore.
func NewMetadata(total, limit int, nextAfter string) Metadata {
	return Metadata{
		Total:   total,
		Limit:   limit,
		HasMore: nextAfter != "",
		After:   nextAfter,
	}
}
