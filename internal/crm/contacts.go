package crm

// ContactProperties are requested for every contact
var ContactProperties = []string{
	"firstname", "lastname", "company", "email", "phone", "createdate", "lastmodifieddate",
}

// ContactResource describes HubSpot contacts with their deal and company
// associations
func ContactResource() Resource[Contact] {
	return Resource[Contact]{
		ObjectType:      "contacts",
		Label:           "Contact",
		Properties:      ContactProperties,
		CreatedProperty: "createdate",
		UpdatedProperty: "lastmodifieddate",
		Associations:    []string{"deals", "companies"},
		Normalize:       NormalizeContact,
	}
}

// NewContactsAggregator creates the contacts aggregator
func NewContactsAggregator(client *Client, tokens TokenProvider, opts ...Option) *Aggregator[Contact] {
	return NewAggregator(ContactResource(), client, tokens, opts...)
}

// NormalizeContact maps a raw contact and its association IDs to a Contact
func NormalizeContact(record Record, associations map[string][]string) Contact {
	return Contact{
		ID:           record.ID(),
		FirstName:    SafeString(record.Property("firstname")),
		LastName:     SafeString(record.Property("lastname")),
		CompanyName:  SafeString(record.Property("company")),
		Emails:       SafeArray(record.Property("email")),
		PhoneNumbers: SafeArray(record.Property("phone")),
		DealIDs:      idsOrEmpty(associations["deals"]),
		AccountIDs:   idsOrEmpty(associations["companies"]),
		CreatedAt:    ToISODate(record.Property("createdate")),
		UpdatedAt:    ToISODate(record.Property("lastmodifieddate")),
	}
}

func idsOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
