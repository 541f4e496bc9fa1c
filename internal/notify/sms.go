package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

// SNSAPI is the subset of the SNS client used by SMS.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMS publishes a short lead message to an SNS topic or phone number.
type SMS struct {
	client   SNSAPI
	topicARN string
	phone    string
}

// NewSMS creates an SNS sink. topicARN wins when both targets are set.
func NewSMS(client SNSAPI, topicARN, phone string) *SMS {
	return &SMS{client: client, topicARN: topicARN, phone: phone}
}

// Name implements Notifier.
func (s *SMS) Name() string { return "sms" }

// Notify implements Notifier.
func (s *SMS) Notify(ctx context.Context, p model.NotificationPayload) error {
	input := &sns.PublishInput{
		Message: aws.String(smsMessage(p)),
	}
	switch {
	case s.topicARN != "":
		input.TopicArn = aws.String(s.topicARN)
	case s.phone != "":
		input.PhoneNumber = aws.String(s.phone)
	default:
		return eris.New("sms: no topic or phone number")
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return eris.Wrap(err, "sms: publish")
	}
	return nil
}

func smsMessage(p model.NotificationPayload) string {
	return fmt.Sprintf("Visibility lead: %s in %s scored %d (%s). Contact %s <%s>",
		p.BusinessName, p.City, p.Score, p.Grade, p.FirstName, p.Email)
}
