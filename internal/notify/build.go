package notify

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/pkg/notion"
	"github.com/sells-group/visibility-cli/pkg/salesforce"
)

// FromConfig builds a Multi over every sink with complete settings. Sinks
// without configuration are skipped.
func FromConfig(ctx context.Context, cfg config.NotifyConfig) (*Multi, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	var sinks []Notifier
	if w := NewWebhook(cfg.WebhookURL, timeout); w != nil {
		sinks = append(sinks, w)
	}

	wantEmail := cfg.Email.From != "" && cfg.Email.To != ""
	wantSMS := cfg.SMS.TopicARN != "" || cfg.SMS.PhoneNumber != ""
	if wantEmail || wantSMS {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, eris.Wrap(err, "notify: load aws config")
		}
		if wantEmail {
			sinks = append(sinks, NewEmail(ses.NewFromConfig(awsCfg), cfg.Email.From, cfg.Email.To))
		}
		if wantSMS {
			sinks = append(sinks, NewSMS(sns.NewFromConfig(awsCfg), cfg.SMS.TopicARN, cfg.SMS.PhoneNumber))
		}
	}

	if cfg.Notion.Token != "" && cfg.Notion.LeadDB != "" {
		sinks = append(sinks, NewNotion(notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB))
	}

	if cfg.Salesforce.ClientID != "" {
		sf, err := salesforce.Connect(salesforce.Credentials{
			LoginURL: cfg.Salesforce.LoginURL,
			Username: cfg.Salesforce.Username,
			ClientID: cfg.Salesforce.ClientID,
			KeyPath:  cfg.Salesforce.KeyPath,
		}, salesforce.WithRateLimit(5))
		if err != nil {
			return nil, eris.Wrap(err, "notify: connect salesforce")
		}
		sinks = append(sinks, NewSalesforce(sf, cfg.Salesforce.LeadSource))
	}

	m := NewMulti(sinks...)
	zap.L().Info("notify: sinks configured", zap.Strings("sinks", m.Names()))
	return m, nil
}
