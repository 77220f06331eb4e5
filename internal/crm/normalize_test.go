package crm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeString(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"empty", "", ""},
		{"trimmed", "  Ada  ", "Ada"},
		{"integer float", float64(1500000), "1500000"},
		{"fraction", 12.5, "12.5"},
		{"json number", json.Number("42"), "42"},
		{"bool", true, "true"},
		{"object", map[string]interface{}{"a": 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeString(tt.input))
		})
	}
}

func TestSafeArray(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected []string
	}{
		{"nil", nil, []string{}},
		{"empty string", "", []string{}},
		{"single value", "ada@example.com", []string{"ada@example.com"}},
		{"list", []interface{}{"a", "", nil, "b", false}, []string{"a", "b"}},
		{"numbers", []interface{}{float64(0), float64(7)}, []string{"7"}},
		{"string zero kept", "0", []string{"0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeArray(tt.input)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestToISODate(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"empty", "", ""},
		{"iso with millis", "2024-01-15T10:30:00.000Z", "2024-01-15T10:30:00.000Z"},
		{"iso with offset", "2024-01-15T12:30:00+02:00", "2024-01-15T10:30:00.000Z"},
		{"calendar date", "2024-01-15", "2024-01-15T00:00:00.000Z"},
		{"epoch millis string", "1704067200000", "2024-01-01T00:00:00.000Z"},
		{"epoch millis number", float64(1704067200000), "2024-01-01T00:00:00.000Z"},
		{"garbage", "not a date", ""},
		{"zero", float64(0), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToISODate(tt.input))
		})
	}
}

func TestNormalizeContact_AllFieldsAbsent(t *testing.T) {
	contact := NormalizeContact(Record{}, nil)

	assert.Equal(t, Contact{
		Emails:       []string{},
		PhoneNumbers: []string{},
		DealIDs:      []string{},
		AccountIDs:   []string{},
	}, contact)

	data, err := json.Marshal(contact)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "first_name", "last_name", "company_name", "emails",
		"phone_numbers", "deal_ids", "account_ids", "created_at", "updated_at"} {
		assert.Contains(t, fields, key)
	}
}

func TestNormalizeContact(t *testing.T) {
	record := Record{
		"id": "101",
		"properties": map[string]interface{}{
			"firstname":        " Ada ",
			"lastname":         "Lovelace",
			"company":          "Analytical Engines",
			"email":            "ada@example.com",
			"phone":            "",
			"createdate":       "2024-01-15T10:30:00.000Z",
			"lastmodifieddate": "garbage",
		},
	}

	contact := NormalizeContact(record, map[string][]string{
		"deals":     {"9001"},
		"companies": {"501", "502"},
	})

	assert.Equal(t, "101", contact.ID)
	assert.Equal(t, "Ada", contact.FirstName)
	assert.Equal(t, "Analytical Engines", contact.CompanyName)
	assert.Equal(t, []string{"ada@example.com"}, contact.Emails)
	assert.Equal(t, []string{}, contact.PhoneNumbers)
	assert.Equal(t, []string{"9001"}, contact.DealIDs)
	assert.Equal(t, []string{"501", "502"}, contact.AccountIDs)
	assert.Equal(t, "2024-01-15T10:30:00.000Z", contact.CreatedAt)
	assert.Equal(t, "", contact.UpdatedAt)
}

func TestNormalizeAccount_AllFieldsAbsent(t *testing.T) {
	account := NormalizeAccount(Record{"properties": nil}, nil)

	assert.Equal(t, Account{
		Industries:   []string{},
		Addresses:    []Address{},
		PhoneNumbers: []string{},
	}, account)
}

func TestNormalizeAccount_Address(t *testing.T) {
	tests := []struct {
		name      string
		props     map[string]interface{}
		addresses []Address
	}{
		{
			name:      "no street or city",
			props:     map[string]interface{}{"state": "CA", "zip": "94105", "country": "US"},
			addresses: []Address{},
		},
		{
			name:  "city only",
			props: map[string]interface{}{"city": "Boston", "country": "US"},
			addresses: []Address{{
				City: "Boston", Country: "US", LocationType: "primary",
			}},
		},
		{
			name:  "full",
			props: map[string]interface{}{"address": "2 Canal Park", "city": "Cambridge", "state": "MA", "zip": "02141", "country": "US"},
			addresses: []Address{{
				Street: "2 Canal Park", City: "Cambridge", State: "MA", ZipCode: "02141", Country: "US", LocationType: "primary",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := NormalizeAccount(Record{"id": "7", "properties": tt.props}, nil)
			assert.Equal(t, tt.addresses, account.Addresses)
		})
	}
}

func TestNormalizeAccount(t *testing.T) {
	record := Record{
		"id": "7",
		"properties": map[string]interface{}{
			"name":                "HubSpot",
			"domain":              "hubspot.com",
			"industry":            "COMPUTER_SOFTWARE",
			"annualrevenue":       "1000000",
			"phone":               "+1 888 482 7768",
			"description":         "CRM platform",
			"hubspot_owner_id":    "42",
			"createdate":          "2024-01-15T10:30:00.000Z",
			"hs_lastmodifieddate": "2024-02-01T00:00:00Z",
		},
	}

	account := NormalizeAccount(record, nil)

	assert.Equal(t, "7", account.ID)
	assert.Equal(t, "42", account.OwnerID)
	assert.Equal(t, "hubspot.com", account.Website)
	assert.Equal(t, []string{"COMPUTER_SOFTWARE"}, account.Industries)
	assert.Equal(t, "1000000", account.AnnualRevenue)
	assert.Equal(t, []string{"+1 888 482 7768"}, account.PhoneNumbers)
	assert.Equal(t, "2024-02-01T00:00:00.000Z", account.UpdatedAt)
}
