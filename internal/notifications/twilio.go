package notifications

import (
	"fmt"

	"github.com/rsalgueiro/truck-booking/pkg/config"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioClient sends SMS through the Twilio REST API
type TwilioClient struct {
	client     *twilio.RestClient
	fromNumber string
	accountSid string
}

// NewTwilioClient creates a new Twilio client
func NewTwilioClient(cfg config.TwilioConfig) *TwilioClient {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioClient{
		client:     client,
		fromNumber: cfg.FromNumber,
		accountSid: cfg.AccountSID,
	}
}

// SendSMS sends an SMS message and returns the message SID
func (t *TwilioClient) SendSMS(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp.Sid == nil {
		return "", fmt.Errorf("no message SID returned")
	}

	return *resp.Sid, nil
}

// GetMessageStatus retrieves the delivery status of a sent message
func (t *TwilioClient) GetMessageStatus(messageSid string) (string, error) {
	params := &twilioApi.FetchMessageParams{}
	params.SetPathAccountSid(t.accountSid)

	resp, err := t.client.Api.FetchMessage(messageSid, params)
	if err != nil {
		return "", fmt.Errorf("failed to get message status: %w", err)
	}

	if resp.Status == nil {
		return "", fmt.Errorf("no status returned")
	}

	return *resp.Status, nil
}
