package web

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func Respond(w http.ResponseWriter, code int, data interface{}) {
	if code == http.StatusNoContent || data == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}

	b, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "unable to encode response")
		return
	}

	RespondRaw(w, code, b)
}

// RespondRaw writes an already encoded JSON body.
func RespondRaw(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(b); err != nil {
		log.WithError(errors.Wrap(err, "write response body")).Warn("respond")
	}
}

func RespondError(w http.ResponseWriter, code int, msg string) {
	log.WithFields(log.Fields{
		"status": code,
		"error":  msg,
	}).Error("error while serving request")

	b, err := json.Marshal(ErrorResponse{Error: msg})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	RespondRaw(w, code, b)
}
