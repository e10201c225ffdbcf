// internal/notifications/channels/push.go
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/andeslee444/Project-H-sub007/internal/common/httpclient"
	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// PushSender delivers through an HTTP push gateway. The gateway dedupes on
// the idempotency key.
type PushSender struct {
	client     *httpclient.Client
	gatewayURL string
	apiKey     string
}

func NewPushSender(client *httpclient.Client, gatewayURL, apiKey string) *PushSender {
	return &PushSender{client: client, gatewayURL: gatewayURL, apiKey: apiKey}
}

func (s *PushSender) Channel() models.Channel {
	return models.ChannelPush
}

type pushPayload struct {
	UserID         string `json:"userId"`
	NotificationID string `json:"notificationId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Priority       string `json:"priority"`
	IdempotencyKey string `json:"idempotencyKey"`
}

func (s *PushSender) Send(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(pushPayload{
		UserID:         n.UserID,
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
		Priority:       n.Priority,
		IdempotencyKey: IdempotencyKey(n.ID, models.ChannelPush),
	})
	if err != nil {
		return &SendError{Channel: models.ChannelPush, Reason: "encode payload", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return &SendError{Channel: models.ChannelPush, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		return &SendError{Channel: models.ChannelPush, Reason: "gateway request failed", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendError{
			Channel: models.ChannelPush,
			Reason:  fmt.Sprintf("gateway returned %d", resp.StatusCode),
		}
	}
	return nil
}
