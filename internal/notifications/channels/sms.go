// internal/notifications/channels/sms.go
package channels

import (
	"context"

	"github.com/andeslee444/Project-H-sub007/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the slice of SNS used here, defined locally for mocking.
type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// SMSSender delivers through AWS SNS direct SMS publish.
type SMSSender struct {
	client    SNSAPI
	directory ContactDirectory
	senderID  string
}

func NewSMSSender(client SNSAPI, directory ContactDirectory, senderID string) *SMSSender {
	return &SMSSender{client: client, directory: directory, senderID: senderID}
}

func (s *SMSSender) Channel() models.Channel {
	return models.ChannelSMS
}

func (s *SMSSender) Send(ctx context.Context, n *models.Notification) error {
	phone, err := s.directory.Phone(ctx, n.UserID)
	if err != nil {
		return &SendError{Channel: models.ChannelSMS, Reason: "no phone number", Err: err}
	}

	attributes := map[string]types.MessageAttributeValue{
		"idempotency_key": {
			DataType:    aws.String("String"),
			StringValue: aws.String(IdempotencyKey(n.ID, models.ChannelSMS)),
		},
	}
	if s.senderID != "" {
		attributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(n.Title + ": " + n.Message),
		MessageAttributes: attributes,
	})
	if err != nil {
		return &SendError{Channel: models.ChannelSMS, Reason: "sns publish failed", Err: err}
	}
	return nil
}
