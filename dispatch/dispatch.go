package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AkashSundaramoorthi/Haven/haptics"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/server/logger"
)

const (
	ALERT_PREAMBLE     = "EMERGENCY ALERT: I need help!"
	DEFAULT_SEND_DELAY = 500 * time.Millisecond

	// Contacts with this name represent the emergency-services entry
	// itself & never receive the alert message.
	EMERGENCY_SERVICES_NAME = "Emergency Services"

	mapsURLTemplate = "https://maps.google.com/?q=%v,%v"
)

var (
	ErrNoRecipients       = errors.New("no emergency contacts to alert")
	ErrNoChannelAvailable = errors.New("cannot open messaging apps")

	logg = logger.NewLogger()
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator is the external geolocation provider. No timeout is imposed
// beyond the provider's own behaviour.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// LinkOpener is the messaging-channel capability: probe whether a deep
// link can be opened, then hand a message off by opening it. Opening only
// confirms the messaging surface accepted the request, not delivery.
type LinkOpener interface {
	CanOpen(link string) (bool, error)
	Open(link string) error
}

// ContactSource is the slice of the registry the dispatcher reads.
type ContactSource interface {
	List() []registry.Contact
}

// AlertContext is the transient record of one dispatch attempt.
type AlertContext struct {
	Timestamp   time.Time    `json:"timestamp"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Recipients  []string     `json:"recipients"`
	MessageBody string       `json:"message_body"`
	Channel     string       `json:"channel"`
}

// Dispatcher composes & sends an emergency alert to all personal
// emergency contacts via the best available channel - chat app first,
// SMS as the universal fallback.
type Dispatcher struct {
	contacts  ContactSource
	locator   Locator
	opener    LinkOpener
	notifier  haptics.Notifier
	sendDelay time.Duration
}

func NewDispatcher(contacts ContactSource, locator Locator, opener LinkOpener, notifier haptics.Notifier) *Dispatcher {
	return &Dispatcher{
		contacts:  contacts,
		locator:   locator,
		opener:    opener,
		notifier:  notifier,
		sendDelay: DEFAULT_SEND_DELAY,
	}
}

// SetSendDelay overrides the minimum pause between per-recipient chat
// sends. Rapid back-to-back deep-link launches trigger upstream
// throttling, so keep this well above zero in production.
func (d *Dispatcher) SetSendDelay(delay time.Duration) {
	d.sendDelay = delay
}

// Send runs one end-to-end dispatch. It fails fast with ErrNoRecipients
// before doing any I/O when no personal contacts exist, treats location
// as best-effort & returns ErrNoChannelAvailable when neither the chat
// nor the SMS channel can be opened.
func (d *Dispatcher) Send(ctx context.Context) (*AlertContext, error) {
	recipients := d.recipientNumbers()
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	alert := &AlertContext{Timestamp: time.Now(), Recipients: recipients}

	coordinates, err := d.locator.CurrentPosition(ctx)
	if err != nil {
		logg.Errorf("failed to get location during emergency: %v", err)
	} else {
		alert.Coordinates = &coordinates
	}

	alert.MessageBody = composeMessageBody(alert.Coordinates)

	if err = d.sendViaBestChannel(alert); err != nil {
		return nil, err
	}

	d.notifier.Success("emergency alert sent")
	return alert, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// recipientNumbers returns the normalized numbers of every contact except
// the emergency-services entry - only personal contacts get the message.
func (d *Dispatcher) recipientNumbers() []string {
	numbers := []string{}
	for _, contact := range d.contacts.List() {
		if contact.Name == EMERGENCY_SERVICES_NAME {
			continue
		}
		numbers = append(numbers, registry.NormalizePhoneNumber(contact.PhoneNumber))
	}

	return numbers
}

func composeMessageBody(coordinates *Coordinates) string {
	if coordinates == nil {
		return ALERT_PREAMBLE
	}

	return fmt.Sprintf(
		"%v\n\n📍 Location Details:\nLatitude: %v\nLongitude: %v\nGoogle Maps: "+mapsURLTemplate,
		ALERT_PREAMBLE,
		coordinates.Latitude,
		coordinates.Longitude,
		coordinates.Latitude,
		coordinates.Longitude,
	)
}

func (d *Dispatcher) sendViaBestChannel(alert *AlertContext) error {
	// Probe the chat channel with the first recipient; when it opens,
	// it's treated as available for all of them.
	chatAvailable, err := d.opener.CanOpen(ChatLink(alert.Recipients[0], alert.MessageBody))
	if err != nil {
		logg.Errorf("error probing chat channel: %v", err)
	}

	if chatAvailable {
		alert.Channel = "chat"
		return d.sendChatMessages(alert)
	}

	smsLink := SMSLink(alert.Recipients, alert.MessageBody)
	smsAvailable, err := d.opener.CanOpen(smsLink)
	if err != nil {
		logg.Errorf("error probing sms channel: %v", err)
	}
	if !smsAvailable {
		return ErrNoChannelAvailable
	}

	// One SMS intent addresses all recipients at once.
	alert.Channel = "sms"
	if err := d.opener.Open(smsLink); err != nil {
		return fmt.Errorf("error sending emergency alert: %v", err)
	}

	return nil
}

// sendChatMessages sends one deep link per recipient, strictly
// sequentially, pausing between sends to avoid upstream rate limiting.
func (d *Dispatcher) sendChatMessages(alert *AlertContext) error {
	for i, recipient := range alert.Recipients {
		if i > 0 {
			time.Sleep(d.sendDelay)
		}

		if err := d.opener.Open(ChatLink(recipient, alert.MessageBody)); err != nil {
			return fmt.Errorf("error sending emergency alert: %v", err)
		}
	}

	return nil
}

// ChatLink builds the chat-app deep link for a single recipient.
func ChatLink(phoneNumber, messageBody string) string {
	return fmt.Sprintf("whatsapp://send?phone=%v&text=%v", phoneNumber, url.QueryEscape(messageBody))
}

// SMSLink builds a single SMS deep link addressed to all recipients.
func SMSLink(phoneNumbers []string, messageBody string) string {
	return fmt.Sprintf("sms:%v?body=%v", strings.Join(phoneNumbers, ","), url.QueryEscape(messageBody))
}
