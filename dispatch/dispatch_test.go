package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AkashSundaramoorthi/Haven/channel"
	"github.com/AkashSundaramoorthi/Haven/dispatch"
	"github.com/AkashSundaramoorthi/Haven/haptics"
	"github.com/AkashSundaramoorthi/Haven/location"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/stretchr/testify/assert"
)

type contactsStub struct {
	contacts []registry.Contact
}

func (c *contactsStub) List() []registry.Contact {
	return c.contacts
}

func newTestDispatcher(contacts []registry.Contact, locator *location.StaticLocator, opener *channel.OpenerStub) (*dispatch.Dispatcher, *haptics.Recorder) {
	recorder := &haptics.Recorder{}
	dispatcher := dispatch.NewDispatcher(&contactsStub{contacts: contacts}, locator, opener, recorder)
	dispatcher.SetSendDelay(time.Millisecond)

	return dispatcher, recorder
}

func TestSendFailsFastWithNoRecipients(t *testing.T) {
	testCases := []struct {
		desc     string
		contacts []registry.Contact
	}{
		{"empty registry", []registry.Contact{}},
		{"only the emergency services entry", []registry.Contact{
			{ID: "1", Name: dispatch.EMERGENCY_SERVICES_NAME, PhoneNumber: "911"},
		}},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			locator := &location.StaticLocator{}
			opener := &channel.OpenerStub{OpenableSchemes: []string{channel.ChatScheme}}
			dispatcher, recorder := newTestDispatcher(tcase.contacts, locator, opener)

			_, err := dispatcher.Send(context.Background())

			assert.ErrorIs(t, err, dispatch.ErrNoRecipients)
			assert.Equal(t, 0, locator.Queries, "No location fetch without recipients")
			assert.Equal(t, 0, opener.Probes, "No channel probe without recipients")
			assert.Empty(t, recorder.Successes)
		})
	}
}

func TestSendViaChatChannel(t *testing.T) {
	locator := &location.StaticLocator{Err: errors.New("gps unavailable")}
	opener := &channel.OpenerStub{OpenableSchemes: []string{channel.ChatScheme}}
	dispatcher, recorder := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: dispatch.EMERGENCY_SERVICES_NAME, PhoneNumber: "911"},
		{ID: "2", Name: "tony stark", PhoneNumber: "+1 234 567 8900"},
		{ID: "3", Name: "spider man", PhoneNumber: "(223) 456-78900"},
	}, locator, opener)

	started := time.Now()
	alert, err := dispatcher.Send(context.Background())
	elapsed := time.Since(started)

	assert.Nil(t, err)
	assert.Equal(t, "chat", alert.Channel)
	assert.Equal(t, []string{"12345678900", "22345678900"}, alert.Recipients)

	// One deep link per recipient, in order, paced apart
	assert.Len(t, opener.OpenedLinks, 2)
	assert.True(t, strings.HasPrefix(opener.OpenedLinks[0], "whatsapp://send?phone=12345678900&text="))
	assert.True(t, strings.HasPrefix(opener.OpenedLinks[1], "whatsapp://send?phone=22345678900&text="))
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)

	assert.Len(t, recorder.Successes, 1)
}

func TestSendFallsBackToSMS(t *testing.T) {
	locator := &location.StaticLocator{Err: errors.New("gps unavailable")}
	opener := &channel.OpenerStub{OpenableSchemes: []string{channel.SMSScheme}}
	dispatcher, _ := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"},
		{ID: "2", Name: "spider man", PhoneNumber: "22345678900"},
	}, locator, opener)

	alert, err := dispatcher.Send(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, "sms", alert.Channel)

	// A single SMS intent addresses both recipients at once
	assert.Len(t, opener.OpenedLinks, 1)
	assert.True(t, strings.HasPrefix(opener.OpenedLinks[0], "sms:12345678900,22345678900?body="))
}

func TestSendFailsWhenNoChannelAvailable(t *testing.T) {
	locator := &location.StaticLocator{}
	opener := &channel.OpenerStub{}
	dispatcher, recorder := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"},
	}, locator, opener)

	_, err := dispatcher.Send(context.Background())

	assert.ErrorIs(t, err, dispatch.ErrNoChannelAvailable)
	assert.Empty(t, opener.OpenedLinks)
	assert.Empty(t, recorder.Successes)
}

func TestLocationIsBestEffort(t *testing.T) {
	locator := &location.StaticLocator{Err: errors.New("gps timed out")}
	opener := &channel.OpenerStub{OpenableSchemes: []string{channel.ChatScheme}}
	dispatcher, _ := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"},
	}, locator, opener)

	alert, err := dispatcher.Send(context.Background())

	assert.Nil(t, err, "Location failure must not block the alert")
	assert.Nil(t, alert.Coordinates)
	assert.Equal(t, dispatch.ALERT_PREAMBLE, alert.MessageBody)
}

func TestMessageBodyCarriesLocation(t *testing.T) {
	locator := &location.StaticLocator{Coordinates: dispatch.Coordinates{Latitude: 43.65, Longitude: -79.38}}
	opener := &channel.OpenerStub{OpenableSchemes: []string{channel.ChatScheme}}
	dispatcher, _ := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"},
	}, locator, opener)

	alert, err := dispatcher.Send(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, &dispatch.Coordinates{Latitude: 43.65, Longitude: -79.38}, alert.Coordinates)
	assert.True(t, strings.HasPrefix(alert.MessageBody, dispatch.ALERT_PREAMBLE))
	assert.Contains(t, alert.MessageBody, "Latitude: 43.65")
	assert.Contains(t, alert.MessageBody, "Longitude: -79.38")
	assert.Contains(t, alert.MessageBody, "https://maps.google.com/?q=43.65,-79.38")

	// The deep link carries the body url-encoded
	expectedLink := fmt.Sprintf("whatsapp://send?phone=12345678900&text=%v", url.QueryEscape(alert.MessageBody))
	assert.Equal(t, []string{expectedLink}, opener.OpenedLinks)
}

func TestOpenFailureIsReported(t *testing.T) {
	locator := &location.StaticLocator{}
	opener := &channel.OpenerStub{
		OpenableSchemes: []string{channel.ChatScheme},
		OpenError:       errors.New("app crashed"),
	}
	dispatcher, recorder := newTestDispatcher([]registry.Contact{
		{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"},
	}, locator, opener)

	_, err := dispatcher.Send(context.Background())

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "app crashed")
	assert.Empty(t, recorder.Successes)
}
