package registry

import (
	"testing"

	"github.com/AkashSundaramoorthi/Haven/store"
	"github.com/stretchr/testify/assert"
)

func TestAddRejectsDuplicateNormalizedNumbers(t *testing.T) {
	reg := NewRegistry(store.NewMemory())

	added := reg.Add(Contact{ID: "1", Name: "A", PhoneNumber: "555-0100"})
	assert.True(t, added, "Should add first contact")

	// Same digits, different formatting
	added = reg.Add(Contact{ID: "2", Name: "B", PhoneNumber: "5550100"})
	assert.False(t, added, "Should reject duplicate normalized number")

	assert.Len(t, reg.List(), 1)
}

func TestRemove(t *testing.T) {
	reg := NewRegistry(store.NewMemory())
	reg.Add(Contact{ID: "1", Name: "tony stark", PhoneNumber: "+1 234 567 8900"})
	reg.Add(Contact{ID: "2", Name: "spider man", PhoneNumber: "+2 234 567 8900"})

	reg.Remove("1")

	contacts := reg.List()
	assert.Len(t, contacts, 1)
	assert.Equal(t, "2", contacts[0].ID)

	// Removing an unknown id changes nothing
	reg.Remove("no-such-id")
	assert.Equal(t, contacts, reg.List())
}

func TestUpdatePhoneNumber(t *testing.T) {
	testCases := []struct {
		desc       string
		id         string
		newNumber  string
		expectedOk bool
	}{
		{"unknown id fails", "no-such-id", "5550199", false},
		{"collision with another contact fails", "1", "(223) 456-78900", false},
		{"reformatting own number succeeds", "1", "(123) 456-78900", true},
		{"fresh number succeeds", "1", "5550199", true},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			reg := NewRegistry(store.NewMemory())
			reg.Add(Contact{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"})
			reg.Add(Contact{ID: "2", Name: "spider man", PhoneNumber: "22345678900"})

			ok := reg.UpdatePhoneNumber(tcase.id, tcase.newNumber)
			assert.Equal(t, tcase.expectedOk, ok)

			if !tcase.expectedOk {
				// All numbers untouched on failure
				contacts := reg.List()
				assert.Equal(t, "12345678900", contacts[0].PhoneNumber)
				assert.Equal(t, "22345678900", contacts[1].PhoneNumber)
				return
			}

			for _, contact := range reg.List() {
				if contact.ID == tcase.id {
					assert.Equal(t, tcase.newNumber, contact.PhoneNumber)
				} else {
					assert.Equal(t, "22345678900", contact.PhoneNumber)
				}
			}
		})
	}
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	reg := NewRegistry(store.NewMemory())
	reg.Add(Contact{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"})

	reg.Update(Contact{ID: "1", Name: "iron man", PhoneNumber: "12345678900", Relationship: "friend"})

	contacts := reg.List()
	assert.Equal(t, "iron man", contacts[0].Name)
	assert.Equal(t, "friend", contacts[0].Relationship)

	// Unknown id is a no-op
	reg.Update(Contact{ID: "99", Name: "nobody", PhoneNumber: "999"})
	assert.Len(t, reg.List(), 1)
}

func TestPersistedRoundTrip(t *testing.T) {
	kv := store.NewMemory()

	original := NewRegistry(kv)
	original.Add(Contact{ID: "1", Name: "tony stark", PhoneNumber: "12345678900", Email: "stark@avengers.com"})
	original.Add(Contact{ID: "2", Name: "spider man", PhoneNumber: "22345678900", Relationship: "nephew"})
	original.SetEmergencyServicesNumber("112")

	// A fresh registry over the same kv store sees the same state
	reloaded := NewRegistry(kv)
	assert.Equal(t, original.List(), reloaded.List())
	assert.Equal(t, "112", reloaded.EmergencyServicesNumber())
}

func TestEmptyRegistryRoundTrip(t *testing.T) {
	kv := store.NewMemory()

	NewRegistry(kv).saveContacts()

	reloaded := NewRegistry(kv)
	assert.Empty(t, reloaded.List())
	assert.Equal(t, DEFAULT_EMERGENCY_SERVICES_NUMBER, reloaded.EmergencyServicesNumber())
}

func TestListReturnsSnapshotCopy(t *testing.T) {
	reg := NewRegistry(store.NewMemory())
	reg.Add(Contact{ID: "1", Name: "tony stark", PhoneNumber: "12345678900"})

	snapshot := reg.List()
	snapshot[0].Name = "mutated"

	assert.Equal(t, "tony stark", reg.List()[0].Name)
}

func TestNormalizePhoneNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"+1 (555) 123-4567", "15551234567"},
		{"555.0100", "5550100"},
		{"5550100", "5550100"},
		{"", ""},
	}

	for _, tcase := range testCases {
		assert.Equal(t, tcase.expected, NormalizePhoneNumber(tcase.input))
	}
}

func TestFromDeviceContact(t *testing.T) {
	contact, ok := FromDeviceContact(&DeviceContact{
		ID:           "device-1",
		FirstName:    "doctor",
		LastName:     "strange",
		PhoneNumbers: []string{"+3 234 567 8900", "555-0100"},
	})
	assert.True(t, ok)
	assert.Equal(t, "doctor strange", contact.Name)
	assert.Equal(t, "+3 234 567 8900", contact.PhoneNumber)

	_, ok = FromDeviceContact(&DeviceContact{ID: "device-2", FirstName: "no", LastName: "phone"})
	assert.False(t, ok, "Selection without a phone number should not convert")

	_, ok = FromDeviceContact(nil)
	assert.False(t, ok, "No selection should not convert")
}
