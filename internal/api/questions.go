package api

import (
	"net/http"

	"github.com/tcp_snm/deepshift/internal/service/question_service"
)

func (a *Api) HandlerStudentQuestions(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	set, err := a.QuestionServiceConfig.GetStudentQuestions(r.Context(), contestID)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, set)
}

func (a *Api) HandlerAdminQuestions(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	questions, err := a.QuestionServiceConfig.ListAdminQuestions(r.Context(), contestID)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, questions)
}

func (a *Api) HandlerCreateQuestion(w http.ResponseWriter, r *http.Request) {
	contestID, ok := urlUUID(w, r, "contestId")
	if !ok {
		return
	}
	var request question_service.QuestionRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	question, err := a.QuestionServiceConfig.CreateQuestion(r.Context(), contestID, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusCreated, question)
}

func (a *Api) HandlerUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var patch question_service.QuestionPatch
	if err := decodeJsonBody(r.Body, &patch); err != nil {
		badPayload(w, err)
		return
	}

	question, err := a.QuestionServiceConfig.UpdateQuestion(r.Context(), id, patch)
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, question)
}

func (a *Api) HandlerDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := a.QuestionServiceConfig.DeleteQuestion(r.Context(), id); err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, messageResponse{Message: "question deleted"})
}
