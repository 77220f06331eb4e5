package crm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/common/logging"
	"hubspot-proxy/internal/common/pagination"
	"hubspot-proxy/internal/common/utils"
	"hubspot-proxy/internal/metrics"
)

// DefaultAssociationConcurrency bounds how many records resolve their
// associations at once
const DefaultAssociationConcurrency = 4

// TokenProvider hands out a valid bearer token
type TokenProvider interface {
	ValidAccessToken(ctx context.Context) (string, error)
}

// Resource describes one HubSpot object type and how to normalize it
type Resource[T any] struct {
	ObjectType      string
	Label           string
	Properties      []string
	CreatedProperty string
	UpdatedProperty string
	Associations    []string
	Normalize       func(record Record, associations map[string][]string) T
}

// Aggregator reads pages and single records of one Resource
type Aggregator[T any] struct {
	resource    Resource[T]
	client      *Client
	tokens      TokenProvider
	concurrency int
	logger      logging.Logger
	now         func() time.Time
}

// Option configures an Aggregator
type Option func(*options)

type options struct {
	concurrency int
	logger      logging.Logger
	now         func() time.Time
}

// WithConcurrency bounds the association fan-out
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the aggregator logger
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now for error timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewAggregator creates an aggregator for resource
func NewAggregator[T any](resource Resource[T], client *Client, tokens TokenProvider, opts ...Option) *Aggregator[T] {
	o := options{
		concurrency: DefaultAssociationConcurrency,
		logger:      logging.GetGlobalLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Aggregator[T]{
		resource:    resource,
		client:      client,
		tokens:      tokens,
		concurrency: o.concurrency,
		logger:      o.logger.WithFields(logging.Field{Key: "object_type", Value: resource.ObjectType}),
		now:         o.now,
	}
}

// FindPage returns one page of normalized records. Association failures are
// reported in the result and never fail the page.
func (a *Aggregator[T]) FindPage(ctx context.Context, filter Filter) (*PageResult[T], error) {
	token, err := a.tokens.ValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var page *ListResponse
	if filters := searchFilters(filter, a.resource.CreatedProperty, a.resource.UpdatedProperty); len(filters) > 0 {
		page, err = a.client.Search(ctx, token, a.resource.ObjectType, &SearchRequest{
			FilterGroups: []FilterGroup{{Filters: filters}},
			Properties:   a.resource.Properties,
			Limit:        limit,
			Sorts:        []Sort{{PropertyName: "createdate", Direction: "DESCENDING"}},
			After:        filter.After,
		})
	} else {
		page, err = a.client.List(ctx, token, a.resource.ObjectType, a.resource.Properties, limit, filter.After)
	}
	if err != nil {
		a.logger.WithContext(ctx).Error("Failed to fetch page", err)
		return nil, err
	}

	data, associationErrors := a.normalizeAll(ctx, token, page.Results)

	result := &PageResult[T]{
		Data:     data,
		Metadata: pagination.NewMetadata(page.TotalOrCount(), limit, page.NextAfter()),
	}
	if len(associationErrors) > 0 {
		result.Errors = associationErrors
		a.logger.WithContext(ctx).Warn("Association lookups failed",
			logging.Field{Key: "count", Value: len(associationErrors)},
		)
	}
	return result, nil
}

// FindOne returns one normalized record. The id is reduced to its digits.
func (a *Aggregator[T]) FindOne(ctx context.Context, id string) (*T, error) {
	cleanID := utils.DigitsOnly(id)
	if cleanID == "" {
		return nil, errors.ValidationError(fmt.Sprintf("Invalid %s ID format", strings.ToLower(a.resource.Label)))
	}

	token, err := a.tokens.ValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	record, err := a.client.Get(ctx, token, a.resource.ObjectType, cleanID, a.resource.Properties)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeUpstream) && errors.StatusCode(err) == http.StatusNotFound {
			return nil, errors.NotFoundError(fmt.Sprintf("%s %s", a.resource.Label, cleanID)).WithCause(err)
		}
		a.logger.WithContext(ctx).Error("Failed to fetch record", err, logging.Field{Key: "id", Value: cleanID})
		return nil, err
	}

	associations, associationErrors := a.resolveAssociations(ctx, token, cleanID)
	for _, assocErr := range associationErrors {
		a.logger.WithContext(ctx).Warn("Association lookup failed",
			logging.Field{Key: "id", Value: cleanID},
			logging.Field{Key: "association_type", Value: assocErr.AssociationType},
			logging.Field{Key: "message", Value: assocErr.Response.Message},
		)
	}

	entity := a.resource.Normalize(record, associations)
	return &entity, nil
}

// normalizeAll normalizes records in order, resolving associations for up to
// a.concurrency records at a time. Errors come back ordered by record, then
// by association type.
func (a *Aggregator[T]) normalizeAll(ctx context.Context, token string, records []Record) ([]T, []AssociationError) {
	data := make([]T, len(records))
	perRecord := make([][]AssociationError, len(records))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, record := range records {
		g.Go(func() error {
			associations, errs := a.resolveAssociations(ctx, token, record.ID())
			data[i] = a.resource.Normalize(record, associations)
			perRecord[i] = errs
			return nil
		})
	}
	_ = g.Wait()

	var associationErrors []AssociationError
	for _, errs := range perRecord {
		associationErrors = append(associationErrors, errs...)
	}
	return data, associationErrors
}

func (a *Aggregator[T]) resolveAssociations(ctx context.Context, token, id string) (map[string][]string, []AssociationError) {
	associations := make(map[string][]string, len(a.resource.Associations))
	var associationErrors []AssociationError

	for _, associationType := range a.resource.Associations {
		associations[associationType] = []string{}
		if id == "" {
			continue
		}

		ids, err := a.client.Associations(ctx, token, a.resource.ObjectType, id, associationType)
		if err != nil {
			metrics.AssociationFailures.WithLabelValues(a.resource.ObjectType, associationType).Inc()
			associationErrors = append(associationErrors, a.associationError(id, associationType, err))
			continue
		}
		associations[associationType] = ids
	}
	return associations, associationErrors
}

func (a *Aggregator[T]) associationError(id, associationType string, err error) AssociationError {
	response := AssociationErrorResponse{Message: err.Error()}
	if appErr, ok := errors.As(err); ok {
		response.Message = appErr.Message
		if appErr.StatusCode > 0 {
			response.Status = appErr.StatusCode
			response.StatusText = http.StatusText(appErr.StatusCode)
		}
	}
	if response.Message == "" {
		response.Message = "Unknown error"
	}

	return AssociationError{
		RequestURL:      a.client.AssociationsURL(a.resource.ObjectType, id, associationType),
		ResourceID:      id,
		AssociationType: associationType,
		Timestamp:       a.now().UTC().Format(isoLayout),
		Response:        response,
	}
}
