package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

func (a *Api) HandlerListContests(w http.ResponseWriter, r *http.Request) {
	var status *database.ContestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := database.ContestStatus(raw)
		switch s {
		case database.ContestStatusUpcoming, database.ContestStatusLive, database.ContestStatusCompleted:
		default:
			respondWithError(w, http.StatusBadRequest, "invalid status provided")
			return
		}
		status = &s
	}
	a.listContests(w, r, status)
}

func (a *Api) HandlerListCompletedContests(w http.ResponseWriter, r *http.Request) {
	status := database.ContestStatusCompleted
	a.listContests(w, r, &status)
}

func (a *Api) listContests(w http.ResponseWriter, r *http.Request, status *database.ContestStatus) {
	contests, err := a.ContestServiceConfig.ListContests(r.Context(), status)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, contests)
}

func (a *Api) HandlerGetContest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := a.ContestServiceConfig.GetContestDetails(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, details)
}

func (a *Api) HandlerRegistrationsCount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	count, err := a.ContestServiceConfig.RegistrationsCount(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, map[string]int64{"count": count})
}

func (a *Api) HandlerAdminListContests(w http.ResponseWriter, r *http.Request) {
	contests, err := a.ContestServiceConfig.ListAdminContests(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, contests)
}

func (a *Api) HandlerAdminGetContest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	contest, err := a.ContestServiceConfig.GetContest(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, contest)
}

func (a *Api) HandlerCreateContest(w http.ResponseWriter, r *http.Request) {
	var request contest_service.ContestRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	contest, err := a.ContestServiceConfig.CreateContest(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusCreated, contest)
}

func (a *Api) HandlerUpdateContest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var patch contest_service.ContestPatch
	if err := decodeJsonBody(r.Body, &patch); err != nil {
		badPayload(w, err)
		return
	}

	contest, err := a.ContestServiceConfig.UpdateContest(r.Context(), id, patch)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, contest)
}

func (a *Api) HandlerDeleteContest(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := a.ContestServiceConfig.DeleteContest(r.Context(), id); err != nil {
		handlerError(err, w)
		return
	}
	a.QuestionServiceConfig.InvalidateContest(id)
	writeJson(w, http.StatusOK, messageResponse{Message: "contest deleted"})
}
