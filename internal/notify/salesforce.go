package notify

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/pkg/salesforce"
)

// Salesforce records the lead as a Salesforce Lead.
type Salesforce struct {
	client     salesforce.Client
	leadSource string
}

// NewSalesforce creates a Salesforce sink tagging leads with leadSource.
func NewSalesforce(client salesforce.Client, leadSource string) *Salesforce {
	return &Salesforce{client: client, leadSource: leadSource}
}

// Name implements Notifier.
func (s *Salesforce) Name() string { return "salesforce" }

// Notify implements Notifier.
func (s *Salesforce) Notify(ctx context.Context, p model.NotificationPayload) error {
	id, created, err := salesforce.UpsertLead(ctx, s.client, salesforce.Lead{
		FirstName:   p.FirstName,
		Email:       p.Email,
		Phone:       p.Phone,
		Company:     p.BusinessName,
		City:        p.City,
		LeadSource:  s.leadSource,
		Rating:      leadRating(p.Grade),
		Description: fmt.Sprintf("Local visibility score %d/100 (grade %s)", p.Score, p.Grade),
	})
	if err != nil {
		return eris.Wrap(err, "notify: salesforce lead")
	}
	zap.L().Debug("notify: salesforce lead recorded",
		zap.String("lead_id", id),
		zap.Bool("created", created),
	)
	return nil
}

// leadRating maps a grade to a Lead rating. Weak visibility means the
// business has the most to gain, so it is the hottest lead.
func leadRating(g model.Grade) string {
	switch g {
	case model.GradeA, model.GradeB:
		return "Cold"
	case model.GradeC:
		return "Warm"
	default:
		return "Hot"
	}
}
