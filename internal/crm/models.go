package crm

import (
	"hubspot-proxy/internal/common/pagination"
)

// Record is a raw HubSpot CRM object as decoded from JSON
type Record map[string]interface{}

// ID returns the object ID
func (r Record) ID() string {
	return SafeString(r["id"])
}

// Properties returns the property bag, or nil when absent
func (r Record) Properties() map[string]interface{} {
	props, _ := r["properties"].(map[string]interface{})
	return props
}

// Property returns one raw property value
func (r Record) Property(name string) interface{} {
	return r.Properties()[name]
}

// Contact is a normalized HubSpot contact
type Contact struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	CompanyName  string   `json:"company_name"`
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
	DealIDs      []string `json:"deal_ids"`
	AccountIDs   []string `json:"account_ids"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// Address is a postal address attached to an account
type Address struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	LocationType string `json:"location_type"`
}

// Account is a normalized HubSpot company
type Account struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Industries    []string  `json:"industries"`
	AnnualRevenue string    `json:"annual_revenue"`
	Website       string    `json:"website"`
	Addresses     []Address `json:"addresses"`
	PhoneNumbers  []string  `json:"phone_numbers"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
}

// AssociationError records one failed association lookup
type AssociationError struct {
	RequestURL      string                   `json:"requestUrl"`
	ResourceID      string                   `json:"resourceId"`
	AssociationType string                   `json:"associationType"`
	Timestamp       string                   `json:"timestamp"`
	Response        AssociationErrorResponse `json:"response"`
}

// AssociationErrorResponse is what is known about the failed call
type AssociationErrorResponse struct {
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Message    string `json:"message"`
}

// PageResult is one page of normalized entities
type PageResult[T any] struct {
	Data     []T                 `json:"data"`
	Metadata pagination.Metadata `json:"metadata"`
	Errors   []AssociationError  `json:"errors,omitempty"`
}
