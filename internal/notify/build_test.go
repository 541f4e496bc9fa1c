package notify

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/config"
)

func TestFromConfig_Empty(t *testing.T) {
	m, err := FromConfig(context.Background(), config.NotifyConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestFromConfig_AllSinks(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	m, err := FromConfig(context.Background(), config.NotifyConfig{
		WebhookURL: "https://hooks.example.com/lead",
		AWSRegion:  "eu-north-1",
		Email:      config.EmailConfig{From: "leads@example.com", To: "sales@example.com"},
		SMS:        config.SMSConfig{PhoneNumber: "+46700000000"},
		Notion:     config.NotionConfig{Token: "secret", LeadDB: "db-leads"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"webhook", "email", "sms", "notion"}, m.Names())
}

func TestFromConfig_PlaceholderWebhookSkipped(t *testing.T) {
	m, err := FromConfig(context.Background(), config.NotifyConfig{
		WebhookURL: "https://hooks.example.com/REPLACE_ME",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestFromConfig_SalesforceKeyMissing(t *testing.T) {
	_, err := FromConfig(context.Background(), config.NotifyConfig{
		Salesforce: config.SalesforceConfig{
			ClientID: "cid",
			KeyPath:  filepath.Join(t.TempDir(), "missing.pem"),
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify: connect salesforce")
}
