package registry

import "strings"

// DeviceContact is the shape returned by the platform contact picker.
type DeviceContact struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	PhoneNumbers []string `json:"phone_numbers"`
}

// Picker presents the device contact picker & returns at most one
// selection. A nil contact with a nil error means nothing was selected.
type Picker interface {
	Pick() (*DeviceContact, error)
}

// FromDeviceContact converts a picker selection into an emergency contact,
// taking the first phone number. ok=false when the selection carries
// no phone number at all.
func FromDeviceContact(device *DeviceContact) (Contact, bool) {
	if device == nil || len(device.PhoneNumbers) == 0 || device.PhoneNumbers[0] == "" {
		return Contact{}, false
	}

	return Contact{
		ID:          device.ID,
		Name:        strings.TrimSpace(device.FirstName + " " + device.LastName),
		PhoneNumber: device.PhoneNumbers[0],
	}, true
}
