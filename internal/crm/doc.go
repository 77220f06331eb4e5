// Package crm reads HubSpot CRM objects and normalizes them into the
// proxy's own entity shapes.
//
// An Aggregator is generic over the entity type. Its Resource names the
// HubSpot object type, the properties to request, the properties used for
// date filters, the association types to resolve and the normalizer.
//
// FindPage obtains a bearer token, issues one list or search call, then
// resolves associations for every record with a bounded number of
// concurrent workers. A failed association lookup never fails the page: it
// becomes an AssociationError in the result and an empty ID list on the
// record. FindOne does the same for a single record and logs association
// failures instead of returning them.
package crm
