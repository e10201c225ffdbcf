// internal/notifications/channels/email.go
package channels

import (
	"context"

	"github.com/andeslee444/Project-H-sub007/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the slice of SES used here, defined locally for mocking.
type SESAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// EmailSender delivers through AWS SES.
type EmailSender struct {
	client    SESAPI
	directory ContactDirectory
	fromEmail string
}

func NewEmailSender(client SESAPI, directory ContactDirectory, fromEmail string) *EmailSender {
	return &EmailSender{client: client, directory: directory, fromEmail: fromEmail}
}

func (s *EmailSender) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *EmailSender) Send(ctx context.Context, n *models.Notification) error {
	to, err := s.directory.Email(ctx, n.UserID)
	if err != nil {
		return &SendError{Channel: models.ChannelEmail, Reason: "no email address", Err: err}
	}

	_, err = s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Title)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(n.Message)},
			},
		},
		Source: aws.String(s.fromEmail),
		Tags: []types.MessageTag{
			{Name: aws.String("idempotency_key"), Value: aws.String(IdempotencyKey(n.ID, models.ChannelEmail))},
		},
	})
	if err != nil {
		return &SendError{Channel: models.ChannelEmail, Reason: "ses send failed", Err: err}
	}
	return nil
}
