// Package channel implements the messaging-channel capability consumed by
// dispatch. Channels are addressed through deep links(whatsapp://, sms:)
// exactly like the mobile shell would hand them to the OS.
package channel

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	ChatScheme = "whatsapp"
	SMSScheme  = "sms"
)

// Message is a deep link decoded into recipients + body.
type Message struct {
	Scheme     string
	Recipients []string
	Body       string
}

// ParseLink decodes a whatsapp:// or sms: deep link.
//
//	whatsapp://send?phone=15550100&text=hi -> one recipient
//	sms:15550100,15550101?body=hi          -> comma-joined recipients
func ParseLink(link string) (*Message, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid deep link %q: %v", link, err)
	}

	query := parsed.Query()

	switch parsed.Scheme {
	case ChatScheme:
		phone := query.Get("phone")
		if phone == "" {
			return nil, fmt.Errorf("chat link %q has no phone", link)
		}
		return &Message{Scheme: ChatScheme, Recipients: []string{phone}, Body: query.Get("text")}, nil

	case SMSScheme:
		numbers := strings.Split(parsed.Opaque, ",")
		if parsed.Opaque == "" || len(numbers) == 0 {
			return nil, fmt.Errorf("sms link %q has no recipients", link)
		}
		return &Message{Scheme: SMSScheme, Recipients: numbers, Body: query.Get("body")}, nil

	default:
		return nil, fmt.Errorf("unsupported deep link scheme %q", parsed.Scheme)
	}
}
