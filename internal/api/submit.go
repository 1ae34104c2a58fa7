package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

func (a *Api) HandlerStartAttempt(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	attempt, err := a.SubmissionServiceConfig.StartAttempt(r.Context(), contestID)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, attempt)
}

func (a *Api) HandlerSubmit(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	var request submission_service.SubmissionRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	response, err := a.SubmissionServiceConfig.Submit(r.Context(), contestID, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, response)
}
