package main

import (
	"github.com/go-chi/chi/v5"

	"github.com/tcp_snm/deepshift/internal/api"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/middleware"
)

func NewV1Router(apiConfig *api.Api, auth *middleware.Auth) *chi.Mux {
	v1 := chi.NewRouter()

	v1.Get("/healthz", api.HandlerReadiness)

	// public contests layer
	v1.Get("/contests", apiConfig.HandlerListContests)
	v1.Get("/contests/completed", apiConfig.HandlerListCompletedContests)
	v1.Get("/contests/{id}", auth.OptionalJWTMiddleware(apiConfig.HandlerGetContest))
	v1.Get("/contests/{id}/results", apiConfig.HandlerPublicResults)
	v1.Get("/contests/{id}/registrations-count", apiConfig.HandlerRegistrationsCount)

	// users layer
	v1.Get("/me", auth.JWTMiddleware(apiConfig.HandlerGetMe))
	v1.Post("/users/sync", auth.JWTMiddleware(apiConfig.HandlerSyncUser, database.RoleAdmin))

	// student layer
	v1.Post("/student/register/{contestId}", auth.JWTMiddleware(apiConfig.HandlerRegister, database.RoleStudent))
	v1.Get("/student/registrations", auth.JWTMiddleware(apiConfig.HandlerMyRegistrations, database.RoleStudent))
	v1.Post("/student/registrations/{id}/upload-payment", auth.JWTMiddleware(apiConfig.HandlerUploadPayment, database.RoleStudent))
	v1.Get("/student/contests/{contestId}/questions", auth.JWTMiddleware(apiConfig.HandlerStudentQuestions, database.RoleStudent))
	v1.Post("/student/contests/{contestId}/start", auth.JWTMiddleware(apiConfig.HandlerStartAttempt, database.RoleStudent))
	v1.Post("/student/contests/{contestId}/submit", auth.JWTMiddleware(apiConfig.HandlerSubmit, database.RoleStudent))
	v1.Get("/student/contests/{contestId}/session", auth.JWTMiddleware(apiConfig.HandlerProctorSession, database.RoleStudent))
	v1.Get("/student/results", auth.JWTMiddleware(apiConfig.HandlerStudentResults, database.RoleStudent))
	v1.Get("/student/stats", auth.JWTMiddleware(apiConfig.HandlerStudentStats, database.RoleStudent))
	v1.Patch("/student/profile", auth.JWTMiddleware(apiConfig.HandlerUpdateProfile, database.RoleStudent))

	// creator layer
	v1.Get("/creator/stats", auth.JWTMiddleware(apiConfig.HandlerCreatorStats, database.RoleCreator))
	v1.Get("/creator/earnings/recent", auth.JWTMiddleware(apiConfig.HandlerRecentEarnings, database.RoleCreator))
	v1.Get("/creator/withdrawals", auth.JWTMiddleware(apiConfig.HandlerMyWithdrawals, database.RoleCreator))
	v1.Post("/creator/withdrawals", auth.JWTMiddleware(apiConfig.HandlerRequestWithdrawal, database.RoleCreator))

	// admin layer
	// contests
	v1.Get("/admin/contests", auth.JWTMiddleware(apiConfig.HandlerAdminListContests, database.RoleAdmin))
	v1.Post("/admin/contests", auth.JWTMiddleware(apiConfig.HandlerCreateContest, database.RoleAdmin))
	v1.Get("/admin/contests/{id}", auth.JWTMiddleware(apiConfig.HandlerAdminGetContest, database.RoleAdmin))
	v1.Patch("/admin/contests/{id}", auth.JWTMiddleware(apiConfig.HandlerUpdateContest, database.RoleAdmin))
	v1.Delete("/admin/contests/{id}", auth.JWTMiddleware(apiConfig.HandlerDeleteContest, database.RoleAdmin))
	// questions
	v1.Get("/admin/contests/{contestId}/questions", auth.JWTMiddleware(apiConfig.HandlerAdminQuestions, database.RoleAdmin))
	v1.Post("/admin/contests/{contestId}/questions", auth.JWTMiddleware(apiConfig.HandlerCreateQuestion, database.RoleAdmin))
	v1.Patch("/admin/questions/{id}", auth.JWTMiddleware(apiConfig.HandlerUpdateQuestion, database.RoleAdmin))
	v1.Delete("/admin/questions/{id}", auth.JWTMiddleware(apiConfig.HandlerDeleteQuestion, database.RoleAdmin))
	// results
	v1.Get("/admin/contests/{contestId}/results", auth.JWTMiddleware(apiConfig.HandlerAdminResults, database.RoleAdmin))
	v1.Post("/admin/contests/{contestId}/publish-results", auth.JWTMiddleware(apiConfig.HandlerPublishResults, database.RoleAdmin))
	// payments
	v1.Get("/admin/payments", auth.JWTMiddleware(apiConfig.HandlerListPayments, database.RoleAdmin))
	v1.Get("/admin/payments/pending", auth.JWTMiddleware(apiConfig.HandlerPendingPayments, database.RoleAdmin))
	v1.Post("/admin/payments/{id}/approve", auth.JWTMiddleware(apiConfig.HandlerApprovePayment, database.RoleAdmin))
	v1.Post("/admin/payments/{id}/reject", auth.JWTMiddleware(apiConfig.HandlerRejectPayment, database.RoleAdmin))
	// withdrawals
	v1.Get("/admin/withdrawals", auth.JWTMiddleware(apiConfig.HandlerListWithdrawals, database.RoleAdmin))
	v1.Post("/admin/withdrawals/{id}/approve", auth.JWTMiddleware(apiConfig.HandlerApproveWithdrawal, database.RoleAdmin))
	v1.Post("/admin/withdrawals/{id}/reject", auth.JWTMiddleware(apiConfig.HandlerRejectWithdrawal, database.RoleAdmin))
	// stats
	v1.Get("/admin/stats", auth.JWTMiddleware(apiConfig.HandlerAdminStats, database.RoleAdmin))

	return v1
}
