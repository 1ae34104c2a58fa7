package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJsonBody rejects unknown fields. An empty body decodes to the zero
// value.
func decodeJsonBody(body io.Reader, v any) error {
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func respondWithJson(w http.ResponseWriter, code int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

// writeJson marshals v and responds with it.
func writeJson(w http.ResponseWriter, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("cannot marshal %T, %v", v, err)
		respondWithError(w, http.StatusInternalServerError, app_errors.ErrInternal.Error())
		return
	}
	respondWithJson(w, code, payload)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	payload, _ := json.Marshal(messageResponse{Message: msg})
	respondWithJson(w, code, payload)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, app_errors.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, app_errors.ErrInvalidRequestCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, app_errors.ErrUnAuthorized),
		errors.Is(err, app_errors.ErrNotRegistered),
		errors.Is(err, app_errors.ErrContestNotStarted),
		errors.Is(err, app_errors.ErrContestEnded):
		return http.StatusForbidden
	case errors.Is(err, app_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app_errors.ErrEntityAlreadyExist),
		errors.Is(err, app_errors.ErrAlreadyRegistered),
		errors.Is(err, app_errors.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, app_errors.ErrInvalidRequest),
		errors.Is(err, app_errors.ErrInvalidInput),
		errors.Is(err, app_errors.ErrPaymentNotPending),
		errors.Is(err, app_errors.ErrInsufficientBalance),
		errors.Is(err, app_errors.ErrSessionNotActive):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handlerError writes the service error. Internal failures were logged
// where they happened and only the generic message reaches the caller.
func handlerError(err error, w http.ResponseWriter) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		if !errors.Is(err, app_errors.ErrInternal) {
			log.Errorf("unclassified error, %v", err)
		}
		msg = app_errors.ErrInternal.Error()
	}
	respondWithError(w, code, msg)
}

func badPayload(w http.ResponseWriter, err error) {
	respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload, %s", err.Error()))
}

// urlUUID reads a uuid url parameter, writing a 400 when it is malformed.
func urlUUID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s provided", key))
		return uuid.Nil, false
	}
	return id, true
}

func HandlerReadiness(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}
