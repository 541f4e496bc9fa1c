package notify

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/pkg/notion"
)

// Notion records the lead as a page in a Notion database.
type Notion struct {
	client notion.Client
	dbID   string
	now    func() time.Time
}

// NewNotion creates a Notion sink writing to database dbID.
func NewNotion(client notion.Client, dbID string) *Notion {
	return &Notion{client: client, dbID: dbID, now: time.Now}
}

// Name implements Notifier.
func (n *Notion) Name() string { return "notion" }

// Notify implements Notifier.
func (n *Notion) Notify(ctx context.Context, p model.NotificationPayload) error {
	pageID, created, err := notion.UpsertLead(ctx, n.client, n.dbID, notion.Lead{
		BusinessName: p.BusinessName,
		FirstName:    p.FirstName,
		Email:        p.Email,
		Phone:        p.Phone,
		City:         p.City,
		Score:        p.Score,
		Grade:        string(p.Grade),
		AnalyzedAt:   n.now().UTC(),
	})
	if err != nil {
		return eris.Wrap(err, "notify: notion lead")
	}
	zap.L().Debug("notify: notion lead recorded",
		zap.String("page_id", pageID),
		zap.Bool("created", created),
	)
	return nil
}
