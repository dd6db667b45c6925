package relay

import (
	"encoding/json"
	"net/http"

	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/rs/zerolog"
)

// writeJSON encodes payload as the response body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write json response")
	}
}

// writeError answers with the relay's error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, delivery.Response{Success: false, Error: msg})
}
