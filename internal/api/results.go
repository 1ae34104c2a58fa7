package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/service/results_service"
)

func (a *Api) HandlerPublicResults(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	results, err := a.ResultsServiceConfig.PublicResults(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, results)
}

func (a *Api) HandlerStudentResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.ResultsServiceConfig.StudentResults(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, results)
}

func (a *Api) HandlerAdminResults(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	results, err := a.ResultsServiceConfig.AdminResults(r.Context(), contestID)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, results)
}

func (a *Api) HandlerPublishResults(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	var request results_service.PublishRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	response, err := a.ResultsServiceConfig.PublishResults(r.Context(), contestID, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, response)
}
