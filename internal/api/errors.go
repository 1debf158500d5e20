package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/output"
)

// errorBody is the failure envelope.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code and payload.
// A payload that cannot be encoded becomes a 500 error envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "failed to encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client may have gone away
	w.Write(body)
}

// writeResult writes the success envelope around a converted reply.
func writeResult(w http.ResponseWriter, v any) {
	env := output.NewObject(1)
	env.Set("result", v)
	writeJSON(w, http.StatusOK, env)
}

// writeError writes the failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps a failure to its HTTP status. Client-caused failures are
// 400; everything else is 500.
func statusFor(err error) int {
	switch bridge.KindOf(err) {
	case bridge.MalformedPath, bridge.DBSelectFailure, bridge.CommandFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure writes err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
