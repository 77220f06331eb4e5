package crm

// AccountProperties are requested for every company
var AccountProperties = []string{
	"name", "domain", "industry", "annualrevenue", "phone", "city", "state", "zip",
	"country", "address", "description", "hubspot_owner_id", "createdate", "hs_lastmodifieddate",
}

// PrimaryLocation is the location type of the single address on an account
const PrimaryLocation = "primary"

// AccountResource describes HubSpot companies. Accounts carry no associations.
func AccountResource() Resource[Account] {
	return Resource[Account]{
		ObjectType:      "companies",
		Label:           "Account",
		Properties:      AccountProperties,
		CreatedProperty: "createdate",
		UpdatedProperty: "hs_lastmodifieddate",
		Normalize:       NormalizeAccount,
	}
}

// NewAccountsAggregator creates the accounts aggregator
func NewAccountsAggregator(client *Client, tokens TokenProvider, opts ...Option) *Aggregator[Account] {
	return NewAggregator(AccountResource(), client, tokens, opts...)
}

// NormalizeAccount maps a raw company to an Account. The address is kept
// only when it has a street or a city.
func NormalizeAccount(record Record, _ map[string][]string) Account {
	address := Address{
		Street:       SafeString(record.Property("address")),
		City:         SafeString(record.Property("city")),
		State:        SafeString(record.Property("state")),
		ZipCode:      SafeString(record.Property("zip")),
		Country:      SafeString(record.Property("country")),
		LocationType: PrimaryLocation,
	}

	addresses := []Address{}
	if address.Street != "" || address.City != "" {
		addresses = append(addresses, address)
	}

	return Account{
		ID:            record.ID(),
		OwnerID:       SafeString(record.Property("hubspot_owner_id")),
		Name:          SafeString(record.Property("name")),
		Description:   SafeString(record.Property("description")),
		Industries:    SafeArray(record.Property("industry")),
		AnnualRevenue: SafeString(record.Property("annualrevenue")),
		Website:       SafeString(record.Property("domain")),
		Addresses:     addresses,
		PhoneNumbers:  SafeArray(record.Property("phone")),
		CreatedAt:     ToISODate(record.Property("createdate")),
		UpdatedAt:     ToISODate(record.Property("hs_lastmodifieddate")),
	}
}
