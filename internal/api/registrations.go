package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service/registration_service"
)

func (a *Api) HandlerRegister(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	var request registration_service.RegisterRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	reg, err := a.RegistrationServiceConfig.Register(r.Context(), contestID, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusCreated, reg)
}

func (a *Api) HandlerUploadPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var request registration_service.UploadPaymentRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	reg, err := a.RegistrationServiceConfig.UploadPayment(r.Context(), id, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, reg)
}

func (a *Api) HandlerMyRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := a.RegistrationServiceConfig.MyRegistrations(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, regs)
}

func (a *Api) HandlerListPayments(w http.ResponseWriter, r *http.Request) {
	var status *database.PaymentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := database.PaymentStatus(raw)
		switch s {
		case database.PaymentStatusPending, database.PaymentStatusApproved, database.PaymentStatusRejected:
		default:
			respondWithError(w, http.StatusBadRequest, "invalid status provided")
			return
		}
		status = &s
	}

	payments, err := a.RegistrationServiceConfig.ListPayments(r.Context(), status)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, payments)
}

func (a *Api) HandlerPendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := a.RegistrationServiceConfig.PendingPayments(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, payments)
}

func (a *Api) HandlerApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	reg, err := a.RegistrationServiceConfig.ApprovePayment(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, reg)
}

func (a *Api) HandlerRejectPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	reg, err := a.RegistrationServiceConfig.RejectPayment(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, reg)
}
