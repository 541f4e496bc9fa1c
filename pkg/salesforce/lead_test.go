package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLead() Lead {
	return Lead{
		FirstName:   "Anna",
		Email:       "anna@example.com",
		Company:     "Café Nord",
		City:        "Umeå",
		LeadSource:  "Visibility Report",
		Rating:      "Warm",
		Description: "Visibility score 76 (B)",
	}
}

func TestLeadFields(t *testing.T) {
	fields := sampleLead().Fields()

	assert.Equal(t, "Café Nord", fields["Company"])
	assert.Equal(t, unknownLastName, fields["LastName"])
	assert.Equal(t, "Anna", fields["FirstName"])
	assert.Equal(t, "Visibility Report", fields["LeadSource"])
	assert.NotContains(t, fields, "Phone")
	assert.NotContains(t, fields, "Id")
}

func TestLeadFields_KeepsLastName(t *testing.T) {
	l := sampleLead()
	l.LastName = "Berg"
	assert.Equal(t, "Berg", l.Fields()["LastName"])
}

func TestFindLeadByEmail_EscapesQuotes(t *testing.T) {
	var captured string
	mc := &mockClient{
		queryFn: func(_ context.Context, soql string, _ any) error {
			captured = soql
			return nil
		},
	}

	lead, err := FindLeadByEmail(context.Background(), mc, "o'brien@example.com")
	require.NoError(t, err)
	assert.Nil(t, lead)
	assert.Contains(t, captured, `Email = 'o\'brien@example.com'`)
	assert.Contains(t, captured, "IsConverted = false")
}

func TestUpsertLead_Inserts(t *testing.T) {
	var object string
	mc := &mockClient{
		insertOneFn: func(_ context.Context, sObject string, record map[string]any) (string, error) {
			object = sObject
			assert.Equal(t, "anna@example.com", record["Email"])
			return "00QNEW", nil
		},
		updateOneFn: func(context.Context, string, string, map[string]any) error {
			t.Fatal("unexpected update")
			return nil
		},
	}

	id, created, err := UpsertLead(context.Background(), mc, sampleLead())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "00QNEW", id)
	assert.Equal(t, "Lead", object)
}

func TestUpsertLead_UpdatesExisting(t *testing.T) {
	var updatedID string
	mc := &mockClient{
		queryFn: func(_ context.Context, _ string, out any) error {
			*(out.(*[]Lead)) = []Lead{{ID: "00QOLD", Email: "anna@example.com"}}
			return nil
		},
		updateOneFn: func(_ context.Context, _ string, id string, fields map[string]any) error {
			updatedID = id
			assert.Equal(t, "Warm", fields["Rating"])
			return nil
		},
		insertOneFn: func(context.Context, string, map[string]any) (string, error) {
			t.Fatal("unexpected insert")
			return "", nil
		},
	}

	id, created, err := UpsertLead(context.Background(), mc, sampleLead())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "00QOLD", id)
	assert.Equal(t, "00QOLD", updatedID)
}

func TestUpsertLead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		lead    Lead
		client  *mockClient
		wantErr string
	}{
		{
			name:    "missing email",
			lead:    Lead{Company: "Café Nord"},
			client:  &mockClient{},
			wantErr: "email is required",
		},
		{
			name:    "missing company",
			lead:    Lead{Email: "a@b.se"},
			client:  &mockClient{},
			wantErr: "company is required",
		},
		{
			name: "query fails",
			lead: sampleLead(),
			client: &mockClient{queryFn: func(context.Context, string, any) error {
				return errors.New("session expired")
			}},
			wantErr: "sf: find lead by email",
		},
		{
			name: "insert fails",
			lead: sampleLead(),
			client: &mockClient{insertOneFn: func(context.Context, string, map[string]any) (string, error) {
				return "", errors.New("duplicate")
			}},
			wantErr: "sf: create lead",
		},
		{
			name: "update fails",
			lead: sampleLead(),
			client: &mockClient{
				queryFn: func(_ context.Context, _ string, out any) error {
					*(out.(*[]Lead)) = []Lead{{ID: "00QOLD"}}
					return nil
				},
				updateOneFn: func(context.Context, string, string, map[string]any) error {
					return errors.New("locked")
				},
			},
			wantErr: "sf: update lead 00QOLD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := UpsertLead(context.Background(), tt.client, tt.lead)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
