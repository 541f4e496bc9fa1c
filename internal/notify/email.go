package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

// SESAPI is the subset of the SES client used by Email.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email sends a lead summary through AWS SES.
type Email struct {
	client SESAPI
	from   string
	to     []string
}

// NewEmail creates an SES sink. to is a comma-separated address list.
func NewEmail(client SESAPI, from, to string) *Email {
	var recipients []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return &Email{client: client, from: from, to: recipients}
}

// Name implements Notifier.
func (e *Email) Name() string { return "email" }

// Notify implements Notifier.
func (e *Email) Notify(ctx context.Context, p model.NotificationPayload) error {
	if len(e.to) == 0 {
		return eris.New("email: no recipients")
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: e.to,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(emailSubject(p)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(emailBody(p)),
				},
			},
		},
		Source: aws.String(e.from),
	}

	out, err := e.client.SendEmail(ctx, input)
	if err != nil {
		return eris.Wrap(err, "email: send")
	}
	if out == nil || out.MessageId == nil {
		return eris.New("email: no message id returned")
	}
	return nil
}

func emailSubject(p model.NotificationPayload) string {
	return fmt.Sprintf("New visibility lead: %s (%d, %s)", p.BusinessName, p.Score, p.Grade)
}

func emailBody(p model.NotificationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n", p.BusinessName)
	fmt.Fprintf(&b, "City: %s\n", p.City)
	fmt.Fprintf(&b, "Score: %d/100 (grade %s)\n\n", p.Score, p.Grade)
	fmt.Fprintf(&b, "Contact: %s\n", p.FirstName)
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	if p.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.Phone)
	}
	return b.String()
}
