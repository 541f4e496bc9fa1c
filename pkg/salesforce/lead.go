package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// unknownLastName fills the required LastName when only a first name is known.
const unknownLastName = "[not provided]"

// Lead represents a Salesforce Lead record.
type Lead struct {
	ID          string `json:"Id" salesforce:"Id"`
	FirstName   string `json:"FirstName" salesforce:"FirstName"`
	LastName    string `json:"LastName" salesforce:"LastName"`
	Email       string `json:"Email" salesforce:"Email"`
	Phone       string `json:"Phone" salesforce:"Phone"`
	Company     string `json:"Company" salesforce:"Company"`
	City        string `json:"City" salesforce:"City"`
	LeadSource  string `json:"LeadSource" salesforce:"LeadSource"`
	Rating      string `json:"Rating" salesforce:"Rating"`
	Description string `json:"Description" salesforce:"Description"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Email", "Phone", "Company",
	"City", "LeadSource", "Rating", "Description",
}

// Fields returns the writable fields of l. Empty optional fields are left
// out so updates never blank existing values.
func (l Lead) Fields() map[string]any {
	fields := map[string]any{
		"LastName": l.LastName,
		"Company":  l.Company,
		"Email":    l.Email,
	}
	if fields["LastName"] == "" {
		fields["LastName"] = unknownLastName
	}
	for k, v := range map[string]string{
		"FirstName":   l.FirstName,
		"Phone":       l.Phone,
		"City":        l.City,
		"LeadSource":  l.LeadSource,
		"Rating":      l.Rating,
		"Description": l.Description,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

// FindLeadByEmail returns the open Lead with the given email, or nil when
// there is none.
func FindLeadByEmail(ctx context.Context, c Client, email string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Email = '%s' AND IsConverted = false LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(email),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrapf(err, "sf: find lead by email %s", email)
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpsertLead updates the open Lead with the same email or inserts a new one.
// It returns the record ID and whether it was created.
func UpsertLead(ctx context.Context, c Client, l Lead) (string, bool, error) {
	if l.Email == "" {
		return "", false, eris.New("sf: lead email is required")
	}
	if l.Company == "" {
		return "", false, eris.New("sf: lead company is required")
	}

	existing, err := FindLeadByEmail(ctx, c, l.Email)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		if err := c.UpdateOne(ctx, "Lead", existing.ID, l.Fields()); err != nil {
			return "", false, eris.Wrapf(err, "sf: update lead %s", existing.ID)
		}
		return existing.ID, false, nil
	}

	id, err := c.InsertOne(ctx, "Lead", l.Fields())
	if err != nil {
		return "", false, eris.Wrap(err, "sf: create lead")
	}
	return id, true, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}
