package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	sendEmailFn func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.sendEmailFn(ctx, params, optFns...)
}

type mockSNS struct {
	publishFn func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.publishFn(ctx, params, optFns...)
}

func TestEmail_Sends(t *testing.T) {
	var input *ses.SendEmailInput
	client := &mockSES{sendEmailFn: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		input = params
		return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
	}}

	e := NewEmail(client, "leads@example.com", "sales@example.com, ops@example.com ,")
	require.NoError(t, e.Notify(context.Background(), samplePayload()))

	require.NotNil(t, input)
	assert.Equal(t, "leads@example.com", aws.ToString(input.Source))
	assert.Equal(t, []string{"sales@example.com", "ops@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "New visibility lead: Café Nord (62, C)", aws.ToString(input.Message.Subject.Data))

	body := aws.ToString(input.Message.Body.Text.Data)
	assert.Contains(t, body, "Score: 62/100 (grade C)")
	assert.Contains(t, body, "Phone: +46701234567")
}

func TestEmail_NoPhoneLine(t *testing.T) {
	p := samplePayload()
	p.Phone = ""
	assert.NotContains(t, emailBody(p), "Phone:")
}

func TestEmail_Errors(t *testing.T) {
	t.Run("no recipients", func(t *testing.T) {
		err := NewEmail(&mockSES{}, "a@b.se", " ").Notify(context.Background(), samplePayload())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no recipients")
	})

	t.Run("send fails", func(t *testing.T) {
		client := &mockSES{sendEmailFn: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		}}
		err := NewEmail(client, "a@b.se", "c@d.se").Notify(context.Background(), samplePayload())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email: send")
	})

	t.Run("missing message id", func(t *testing.T) {
		client := &mockSES{sendEmailFn: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		}}
		err := NewEmail(client, "a@b.se", "c@d.se").Notify(context.Background(), samplePayload())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no message id")
	})
}

func TestSMS_Targets(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		phone     string
		wantTopic string
		wantPhone string
	}{
		{"topic", "arn:aws:sns:eu-north-1:123:leads", "", "arn:aws:sns:eu-north-1:123:leads", ""},
		{"phone", "", "+46700000000", "", "+46700000000"},
		{"topic wins", "arn:aws:sns:eu-north-1:123:leads", "+46700000000", "arn:aws:sns:eu-north-1:123:leads", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input *sns.PublishInput
			client := &mockSNS{publishFn: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
				input = params
				return &sns.PublishOutput{MessageId: aws.String("m")}, nil
			}}

			require.NoError(t, NewSMS(client, tt.topic, tt.phone).Notify(context.Background(), samplePayload()))
			assert.Equal(t, tt.wantTopic, aws.ToString(input.TopicArn))
			assert.Equal(t, tt.wantPhone, aws.ToString(input.PhoneNumber))
			assert.Contains(t, aws.ToString(input.Message), "Café Nord in Umeå scored 62 (C)")
		})
	}
}

func TestSMS_Errors(t *testing.T) {
	err := NewSMS(&mockSNS{}, "", "").Notify(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topic or phone number")

	client := &mockSNS{publishFn: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return nil, errors.New("opted out")
	}}
	err = NewSMS(client, "", "+46700000000").Notify(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sms: publish")
}
