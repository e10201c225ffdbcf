// internal/notifications/channels/channels_test.go
package channels

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andeslee444/Project-H-sub007/internal/common/httpclient"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	input *sns.PublishInput
	err   error
}

func (m *mockSNS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

type staticDirectory struct {
	email    string
	phone    string
	emailErr error
	phoneErr error
}

func (d *staticDirectory) Email(context.Context, string) (string, error) {
	return d.email, d.emailErr
}

func (d *staticDirectory) Phone(context.Context, string) (string, error) {
	return d.phone, d.phoneErr
}

func sampleNotification() *models.Notification {
	return &models.Notification{
		ID:       "notif-1",
		UserID:   "user-1",
		Type:     models.TypeWaitlistAvailable,
		Priority: models.PriorityHigh,
		Title:    "Appointment Available",
		Message:  "Dr. Chen has an opening",
		Channels: []models.Channel{models.ChannelEmail},
	}
}

// ==========================
// Email Tests
// ==========================

func TestEmailSender_Send(t *testing.T) {
	sesMock := &mockSES{}
	sender := NewEmailSender(sesMock, &staticDirectory{email: "patient@example.com"}, "noreply@clinic.example")

	err := sender.Send(context.Background(), sampleNotification())

	require.NoError(t, err)
	require.NotNil(t, sesMock.input)
	assert.Equal(t, []string{"patient@example.com"}, sesMock.input.Destination.ToAddresses)
	assert.Equal(t, "noreply@clinic.example", *sesMock.input.Source)
	assert.Equal(t, "Appointment Available", *sesMock.input.Message.Subject.Data)

	require.Len(t, sesMock.input.Tags, 1)
	assert.Equal(t, "notif-1-email", *sesMock.input.Tags[0].Value)
}

func TestEmailSender_NoAddress(t *testing.T) {
	sender := NewEmailSender(&mockSES{}, &staticDirectory{emailErr: errors.New("not found")}, "noreply@clinic.example")

	err := sender.Send(context.Background(), sampleNotification())

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, models.ChannelEmail, sendErr.Channel)
}

func TestEmailSender_ProviderFailure(t *testing.T) {
	sender := NewEmailSender(&mockSES{err: errors.New("throttled")},
		&staticDirectory{email: "patient@example.com"}, "noreply@clinic.example")

	err := sender.Send(context.Background(), sampleNotification())

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorContains(t, err, "throttled")
}

// ==========================
// SMS Tests
// ==========================

func TestSMSSender_Send(t *testing.T) {
	snsMock := &mockSNS{}
	sender := NewSMSSender(snsMock, &staticDirectory{phone: "+15555550100"}, "WAITLIST")

	err := sender.Send(context.Background(), sampleNotification())

	require.NoError(t, err)
	require.NotNil(t, snsMock.input)
	assert.Equal(t, "+15555550100", *snsMock.input.PhoneNumber)
	assert.Contains(t, *snsMock.input.Message, "Appointment Available")

	attrs := snsMock.input.MessageAttributes
	assert.Equal(t, "notif-1-sms", *attrs["idempotency_key"].StringValue)
	assert.Equal(t, "WAITLIST", *attrs["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestSMSSender_NoSenderIDOmitsAttribute(t *testing.T) {
	snsMock := &mockSNS{}
	sender := NewSMSSender(snsMock, &staticDirectory{phone: "+15555550100"}, "")

	require.NoError(t, sender.Send(context.Background(), sampleNotification()))
	_, ok := snsMock.input.MessageAttributes["AWS.SNS.SMS.SenderID"]
	assert.False(t, ok)
}

func TestSMSSender_NoPhone(t *testing.T) {
	sender := NewSMSSender(&mockSNS{}, &staticDirectory{phoneErr: errors.New("not found")}, "")

	err := sender.Send(context.Background(), sampleNotification())

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, models.ChannelSMS, sendErr.Channel)
}

// ==========================
// Push Tests
// ==========================

func TestPushSender_Send(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewPushSender(httpclient.NewClient(time.Second), server.URL, "secret-key")

	err := sender.Send(context.Background(), sampleNotification())

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Contains(t, string(gotBody), "notif-1-push")
}

func TestPushSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewPushSender(httpclient.NewClient(time.Second), server.URL, "")

	err := sender.Send(context.Background(), sampleNotification())

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Contains(t, sendErr.Reason, "502")
}

// ==========================
// In-App Tests
// ==========================

func TestInAppSender_PublishesEvent(t *testing.T) {
	bus := events.NewBus(logger.NewTestLogger(t))
	ch := bus.Subscribe(1)
	sender := NewInAppSender(bus)

	require.NoError(t, sender.Send(context.Background(), sampleNotification()))

	select {
	case ev := <-ch:
		assert.Equal(t, events.KindNotificationInApp, ev.Kind)
		assert.Equal(t, "user-1", ev.UserID)
		assert.Equal(t, "notif-1", ev.Payload["notificationId"])
	case <-time.After(time.Second):
		t.Fatal("expected an in-app event")
	}
}

// ==========================
// Idempotency Key Tests
// ==========================

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "notif-1-email", IdempotencyKey("notif-1", models.ChannelEmail))
	assert.Equal(t, IdempotencyKey("n", models.ChannelSMS), IdempotencyKey("n", models.ChannelSMS))
}
