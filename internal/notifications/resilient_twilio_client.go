package notifications

import (
	"context"
	"time"

	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/resilience"
	"go.uber.org/zap"
)

// ResilientTwilioClient wraps an SMSSender with a circuit breaker.
type ResilientTwilioClient struct {
	client  SMSSender
	breaker *resilience.CircuitBreaker
}

// NewResilientTwilioClient wraps the given sender. A nil breaker gets
// defaults tuned for the Twilio API.
func NewResilientTwilioClient(client SMSSender, breaker *resilience.CircuitBreaker) *ResilientTwilioClient {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "twilio-sms",
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		}, nil)
	}

	return &ResilientTwilioClient{
		client:  client,
		breaker: breaker,
	}
}

// SendSMS sends an SMS through the circuit breaker
func (r *ResilientTwilioClient) SendSMS(to, body string) (string, error) {
	result, err := r.breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return r.client.SendSMS(to, body)
	})
	if err != nil {
		logger.Get().Warn("failed to send SMS", zap.Error(err))
		return "", err
	}

	sid, _ := result.(string)
	logger.Get().Debug("SMS sent", zap.String("sid", sid))
	return sid, nil
}
