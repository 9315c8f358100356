package channel

import (
	"fmt"

	"github.com/AkashSundaramoorthi/Haven/server/logger"
	"github.com/AkashSundaramoorthi/Haven/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var logg = logger.NewLogger()

// TwilioOpener carries deep links over the Twilio API on headless runs -
// whatsapp:// links ride Twilio's WhatsApp address space, sms: links go
// through the messaging service.
type TwilioOpener struct {
	client *twilio.RestClient
	config shared.TwilioConfig
}

func NewTwilioOpener(config shared.TwilioConfig) *TwilioOpener {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &TwilioOpener{client: client, config: config}
}

// CanOpen reports whether the account is configured for the link's scheme.
func (t *TwilioOpener) CanOpen(link string) (bool, error) {
	msg, err := ParseLink(link)
	if err != nil {
		return false, err
	}

	if t.config.AccountSid == "" || t.config.AuthToken == "" {
		return false, nil
	}

	switch msg.Scheme {
	case ChatScheme:
		return t.config.WhatsAppNumber != "", nil
	case SMSScheme:
		return t.config.MessagingServiceSid != "", nil
	}

	return false, nil
}

// Open decodes the link & hands one message per recipient to Twilio.
func (t *TwilioOpener) Open(link string) error {
	msg, err := ParseLink(link)
	if err != nil {
		return err
	}

	for _, recipient := range msg.Recipients {
		params := &openapi.CreateMessageParams{}
		params.SetBody(msg.Body)

		if msg.Scheme == ChatScheme {
			params.SetFrom(fmt.Sprintf("whatsapp:+%v", t.config.WhatsAppNumber))
			params.SetTo(fmt.Sprintf("whatsapp:+%v", recipient))
		} else {
			params.SetMessagingServiceSid(t.config.MessagingServiceSid)
			params.SetTo("+" + recipient)
		}

		resp, err := t.client.ApiV2010.CreateMessage(params)
		if err != nil {
			return fmt.Errorf("twilio: %v", err)
		}

		if resp.ErrorMessage != nil {
			logg.Errorf("twilio message to %v: %v", recipient, *resp.ErrorMessage)
		}
	}

	return nil
}
