package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/rsalgueiro/truck-booking/pkg/logger"
	"github.com/rsalgueiro/truck-booking/pkg/resilience"
	"go.uber.org/zap"
)

// ResilientEmailClient wraps an EmailSender with a circuit breaker so a
// broken SMTP relay cannot stall event processing.
type ResilientEmailClient struct {
	client  EmailSender
	breaker *resilience.CircuitBreaker
}

// NewResilientEmailClient wraps the given sender. A nil breaker gets
// defaults tuned for SMTP.
func NewResilientEmailClient(client EmailSender, breaker *resilience.CircuitBreaker) *ResilientEmailClient {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "smtp-email",
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		}, nil)
	}

	return &ResilientEmailClient{
		client:  client,
		breaker: breaker,
	}
}

// SendEmail sends an email through the circuit breaker
func (r *ResilientEmailClient) SendEmail(to, subject, body string) error {
	_, err := r.breaker.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, r.client.SendEmail(to, subject, body)
	})
	if err != nil {
		logger.Get().Warn("failed to send email",
			zap.Error(err),
			zap.String("to", maskEmail(to)),
			zap.String("subject", subject),
		)
		return err
	}

	logger.Get().Debug("email sent",
		zap.String("to", maskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}

// maskEmail hides the local part of an address for logging
func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) == 0 {
		return "***"
	}
	return string(parts[0][0]) + "***@" + parts[1]
}
