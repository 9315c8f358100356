package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AkashSundaramoorthi/Haven/dispatch"
	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/server/auth"
	"github.com/AkashSundaramoorthi/Haven/server/auth/key"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func healthCheck(rw http.ResponseWriter, r *http.Request) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(keyPairJWK))
}

// logIn exchanges the owner PIN for a session token.
func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	if serverConfig.Haven.OwnerPinHash == "" || !auth.CheckPinHash(data["pin"], serverConfig.Haven.OwnerPinHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"pin is invalid"}}, http.StatusUnauthorized)
		return
	}

	token, err := auth.EncodeJWT(auth.HavenTokenClaims{
		Device: data["device"],
		StandardClaims: jwt.StandardClaims{
			Subject:   "owner",
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: map[string]string{"token": token}})
}

// ---------------------------------------------------------------------------------//
// Contact handlers
// --------------------------------------------------------------------------------//

func listContacts(rw http.ResponseWriter, r *http.Request) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: coord.Registry().List()})
}

func addContact(rw http.ResponseWriter, r *http.Request) {
	data := registry.Contact{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(data); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	if !coord.Registry().Add(data) {
		writeResponse(rw,
			ResponsePayload{Errors: []string{"a contact with this phone number already exists"}},
			http.StatusConflict)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// updateContact replaces the whole record. Phone changes must go through
// the phone-number endpoint first - this one doesn't re-check uniqueness.
func updateContact(rw http.ResponseWriter, r *http.Request) {
	data := registry.Contact{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	data.ID = mux.Vars(r)["id"]
	if errs := validate.Struct(data); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	coord.Registry().Update(data)
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func updateContactPhoneNumber(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	newNumber := data["phone_number"]
	if !isValidPhoneNumber(newNumber) {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid phone_number required"}}, http.StatusBadRequest)
		return
	}

	if !coord.Registry().UpdatePhoneNumber(mux.Vars(r)["id"], newNumber) {
		writeResponse(rw,
			ResponsePayload{Errors: []string{"contact not found or phone number already in use"}},
			http.StatusConflict)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func removeContact(rw http.ResponseWriter, r *http.Request) {
	coord.Registry().Remove(mux.Vars(r)["id"])
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func getEmergencyNumber(rw http.ResponseWriter, r *http.Request) {
	json.NewEncoder(rw).Encode(ResponsePayload{
		Success: true,
		Data:    map[string]string{"number": coord.Registry().EmergencyServicesNumber()},
	})
}

func setEmergencyNumber(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	if data["number"] == "" {
		writeResponse(rw, ResponsePayload{Errors: []string{"number required"}}, http.StatusBadRequest)
		return
	}

	coord.Registry().SetEmergencyServicesNumber(data["number"])
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Alert & voice handlers
// --------------------------------------------------------------------------------//

func sendAlert(rw http.ResponseWriter, r *http.Request) {
	alert, err := coord.Dispatcher().Send(r.Context())
	if errors.Is(err, dispatch.ErrNoRecipients) || errors.Is(err, dispatch.ErrNoChannelAvailable) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: alert})
}

func voiceStatus(rw http.ResponseWriter, r *http.Request) {
	monitor := coord.Monitor()
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: map[string]interface{}{
		"listening":      monitor.Listening(),
		"state":          monitor.State().String(),
		"last_utterance": monitor.LastUtterance(),
	}})
}

func startVoice(rw http.ResponseWriter, r *http.Request) {
	if err := coord.Monitor().StartListening(); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// stopVoice disarms monitoring. A session token alone is not enough -
// disarming re-checks the owner PIN.
func stopVoice(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	if serverConfig.Haven.OwnerPinHash == "" || !auth.CheckPinHash(data["pin"], serverConfig.Haven.OwnerPinHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"pin is invalid"}}, http.StatusUnauthorized)
		return
	}

	if err := coord.Monitor().StopListening(); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// injectVoiceEvent feeds a recognition event from the device shell into
// the monitor through the bridge recognizer.
func injectVoiceEvent(rw http.ResponseWriter, r *http.Request) {
	data := struct {
		Type       string   `json:"type"`
		Candidates []string `json:"candidates,omitempty"`
		Error      string   `json:"error,omitempty"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	var err error
	switch data.Type {
	case "results":
		err = voiceBridge.InjectResults(data.Candidates)
	case "error":
		err = voiceBridge.InjectError(errors.New(data.Error))
	case "end":
		err = voiceBridge.InjectEnd()
	default:
		writeResponse(rw, ResponsePayload{Errors: []string{"type must be one of results/error/end"}}, http.StatusBadRequest)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnprocessableEntity)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}
