package notifications

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// TwilioSender implements domain.SMSSender over Twilio.
type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
	logger     zerolog.Logger

	// dispatch performs the actual API call; a field so tests can stub the
	// network hop.
	dispatch func(params *twilioApi.CreateMessageParams) error
}

// NewTwilioSender creates a new Twilio SMS sender. When no from-number is
// configured the sender logs the message instead of dispatching it, which
// is the local-development mode.
func NewTwilioSender(accountSID, authToken, fromNumber string, logger zerolog.Logger) domain.SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	sender := &TwilioSender{client: client, fromNumber: fromNumber, logger: logger}
	sender.dispatch = func(params *twilioApi.CreateMessageParams) error {
		_, err := client.Api.CreateMessage(params)
		return err
	}
	return sender
}

// Send implements domain.SMSSender. The Twilio client offers no
// context-aware call, so the dispatch runs in its own goroutine and the
// caller is released as soon as ctx expires; a late dispatch result is
// logged and discarded.
func (t *TwilioSender) Send(ctx context.Context, phone, message string) error {
	if t.fromNumber == "" {
		t.logger.Info().Str("phone", phone).Str("message", message).Msg("mock sms dispatch")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSMSDelivery, err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	done := make(chan error, 1)
	go func() {
		done <- t.dispatch(params)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSMSDelivery, err)
		}
		return nil
	case <-ctx.Done():
		go func() {
			if err := <-done; err != nil {
				t.logger.Warn().Err(err).Str("phone", phone).Msg("sms dispatch failed after deadline")
			}
		}()
		return fmt.Errorf("%w: %v", domain.ErrSMSDelivery, ctx.Err())
	}
}
