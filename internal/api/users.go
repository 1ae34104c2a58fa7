package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

func (a *Api) HandlerGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.UserServiceConfig.GetMe(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, user)
}

func (a *Api) HandlerUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request user_service.UpdateProfileRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	user, err := a.UserServiceConfig.UpdateProfile(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, user)
}

// HandlerSyncUser receives user projections pushed by the identity service.
func (a *Api) HandlerSyncUser(w http.ResponseWriter, r *http.Request) {
	var request user_service.SyncUserRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	user, err := a.UserServiceConfig.SyncUser(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, user)
}
