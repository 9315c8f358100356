package registry

import (
	"encoding/json"
	"strings"
	"sync"
	"unicode"

	"github.com/AkashSundaramoorthi/Haven/server/logger"
	"github.com/AkashSundaramoorthi/Haven/store"
)

const (
	CONTACTS_KEY           = "@haven_emergency_contacts"
	EMERGENCY_SERVICES_KEY = "@haven_emergency_services_number"

	DEFAULT_EMERGENCY_SERVICES_NUMBER = "911"
)

var logg = logger.NewLogger()

type Contact struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"required,phone_number"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Registry is the authoritative, persisted store of emergency contacts &
// the emergency-services number. All mutations are serialized through one
// lock & written through to the kv store before returning - so callers
// can never interleave two half-applied blob writes.
type Registry struct {
	mu                      sync.Mutex
	kv                      store.KV
	contacts                []Contact
	emergencyServicesNumber string
}

// NewRegistry loads both keys from the kv store. Load failures are logged
// & leave the registry at its defaults(empty list/"911") - never fatal.
func NewRegistry(kv store.KV) *Registry {
	registry := &Registry{kv: kv, emergencyServicesNumber: DEFAULT_EMERGENCY_SERVICES_NUMBER}
	registry.loadContacts()
	registry.loadEmergencyServicesNumber()

	return registry
}

// List returns a snapshot copy of the contact list, insertion order preserved.
func (r *Registry) List() []Contact {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := make([]Contact, len(r.contacts))
	copy(contacts, r.contacts)

	return contacts
}

// Add appends & persists 'contact'. It returns false(& mutates nothing)
// when another contact already holds the same normalized phone number.
// The caller supplies the id - either from the device contact picker
// or a generated uuid for manual entries.
func (r *Registry) Add(contact Contact) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.contacts {
		if NormalizePhoneNumber(existing.PhoneNumber) == NormalizePhoneNumber(contact.PhoneNumber) {
			return false
		}
	}

	r.contacts = append(r.contacts, contact)
	r.saveContacts()

	return true
}

// Remove removes the contact with 'id' if present & persists.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := r.contacts[:0]
	for _, contact := range r.contacts {
		if contact.ID != id {
			contacts = append(contacts, contact)
		}
	}

	r.contacts = contacts
	r.saveContacts()
}

// UpdatePhoneNumber swaps the phone number of the contact with 'id'.
// It returns false when the id is unknown, or when 'newNumber' collides
// with a different contact's normalized number.
func (r *Registry) UpdatePhoneNumber(id, newNumber string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target *Contact
	for i := range r.contacts {
		if r.contacts[i].ID == id {
			target = &r.contacts[i]
			break
		}
	}
	if target == nil {
		return false
	}

	for _, contact := range r.contacts {
		if contact.ID != id &&
			NormalizePhoneNumber(contact.PhoneNumber) == NormalizePhoneNumber(newNumber) {
			return false
		}
	}

	target.PhoneNumber = newNumber
	r.saveContacts()

	return true
}

// Update replaces the whole record matching 'contact.ID' & persists.
// Unknown ids are a no-op. NOTE: Update does not re-check phone uniqueness -
// when the number changed, call UpdatePhoneNumber first.
func (r *Registry) Update(contact Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.contacts {
		if r.contacts[i].ID == contact.ID {
			r.contacts[i] = contact
			r.saveContacts()
			return
		}
	}
}

func (r *Registry) EmergencyServicesNumber() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.emergencyServicesNumber
}

func (r *Registry) SetEmergencyServicesNumber(number string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.emergencyServicesNumber = number
	if err := r.kv.Set(EMERGENCY_SERVICES_KEY, number); err != nil {
		logg.Errorf("error saving emergency services number: %v", err)
	}
}

// NormalizePhoneNumber strips all non-digit characters. The result is the
// uniqueness key for contacts & the recipient form used by dispatch.
func NormalizePhoneNumber(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	return digits.String()
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (r *Registry) loadContacts() {
	serialized, ok, err := r.kv.Get(CONTACTS_KEY)
	if err != nil {
		logg.Errorf("error loading contacts: %v", err)
		return
	}
	if !ok {
		return
	}

	contacts := []Contact{}
	if err = json.Unmarshal([]byte(serialized), &contacts); err != nil {
		logg.Errorf("error loading contacts: %v", err)
		return
	}

	r.contacts = contacts
}

// saveContacts writes the full list through to the kv store. Persistence
// failures are logged & absorbed - in-memory state stays authoritative.
func (r *Registry) saveContacts() {
	serialized, err := json.Marshal(r.contacts)
	if err != nil {
		logg.Errorf("error saving contacts: %v", err)
		return
	}

	if err = r.kv.Set(CONTACTS_KEY, string(serialized)); err != nil {
		logg.Errorf("error saving contacts: %v", err)
	}
}

func (r *Registry) loadEmergencyServicesNumber() {
	number, ok, err := r.kv.Get(EMERGENCY_SERVICES_KEY)
	if err != nil {
		logg.Errorf("error loading emergency services number: %v", err)
		return
	}

	if ok && number != "" {
		r.emergencyServicesNumber = number
	}
}
