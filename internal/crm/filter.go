package crm

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/pagination"
	"hubspot-proxy/internal/common/utils"
)

// Filter selects one page of records
type Filter struct {
	Limit        int
	After        string
	CreatedAfter time.Time
	UpdatedAfter time.Time
}

// ParseFilter reads limit, after, created_after and updated_after from a
// query string
func ParseFilter(query url.Values) (Filter, error) {
	params, err := pagination.ParseParams(query)
	if err != nil {
		return Filter{}, err
	}

	filter := Filter{Limit: params.Limit, After: params.After}

	if filter.CreatedAfter, err = parseBound(query, "created_after"); err != nil {
		return Filter{}, err
	}
	if filter.UpdatedAfter, err = parseBound(query, "updated_after"); err != nil {
		return Filter{}, err
	}
	return filter, nil
}

func parseBound(query url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDateBound(raw)
	if err != nil {
		return time.Time{}, errors.ValidationError(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name))
	}
	return t, nil
}

// SearchFilter is one clause of a CRM search
type SearchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// FilterGroup ANDs its filters
type FilterGroup struct {
	Filters []SearchFilter `json:"filters"`
}

// Sort orders search results
type Sort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// SearchRequest is the body of POST /crm/v3/objects/{type}/search
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
	Sorts        []Sort        `json:"sorts"`
	After        string        `json:"after,omitempty"`
}

// searchFilters turns each date bound into a GTE clause on epoch milliseconds
func searchFilters(filter Filter, createdProperty, updatedProperty string) []SearchFilter {
	var filters []SearchFilter
	if !filter.CreatedAfter.IsZero() {
		filters = append(filters, SearchFilter{
			PropertyName: createdProperty,
			Operator:     "GTE",
			Value:        utils.EpochMillis(filter.CreatedAfter),
		})
	}
	if !filter.UpdatedAfter.IsZero() {
		filters = append(filters, SearchFilter{
			PropertyName: updatedProperty,
			Operator:     "GTE",
			Value:        utils.EpochMillis(filter.UpdatedAfter),
		})
	}
	return filters
}
