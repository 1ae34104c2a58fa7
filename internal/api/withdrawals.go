package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service/earning_service"
)

func (a *Api) HandlerRecentEarnings(w http.ResponseWriter, r *http.Request) {
	earnings, err := a.EarningServiceConfig.RecentEarnings(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, earnings)
}

func (a *Api) HandlerMyWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := a.EarningServiceConfig.MyWithdrawals(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, withdrawals)
}

func (a *Api) HandlerRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var request earning_service.WithdrawalRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	withdrawal, err := a.EarningServiceConfig.RequestWithdrawal(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusCreated, withdrawal)
}

func (a *Api) HandlerListWithdrawals(w http.ResponseWriter, r *http.Request) {
	var status *database.WithdrawalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := database.WithdrawalStatus(raw)
		switch s {
		case database.WithdrawalStatusPending, database.WithdrawalStatusApproved, database.WithdrawalStatusRejected:
		default:
			respondWithError(w, http.StatusBadRequest, "invalid status provided")
			return
		}
		status = &s
	}

	withdrawals, err := a.EarningServiceConfig.ListAllWithdrawals(r.Context(), status)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, withdrawals)
}

func (a *Api) HandlerApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	withdrawal, err := a.EarningServiceConfig.ApproveWithdrawal(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, withdrawal)
}

func (a *Api) HandlerRejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	withdrawal, err := a.EarningServiceConfig.RejectWithdrawal(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, withdrawal)
}
