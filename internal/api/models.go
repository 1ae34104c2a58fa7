package api

import (
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/earning_service"
	"github.com/tcp_snm/deepshift/internal/service/proctor_service"
	"github.com/tcp_snm/deepshift/internal/service/question_service"
	"github.com/tcp_snm/deepshift/internal/service/registration_service"
	"github.com/tcp_snm/deepshift/internal/service/results_service"
	"github.com/tcp_snm/deepshift/internal/service/stats_service"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
)

type Api struct {
	UserServiceConfig         *user_service.UserService
	ContestServiceConfig      *contest_service.ContestService
	QuestionServiceConfig     *question_service.QuestionService
	RegistrationServiceConfig *registration_service.RegistrationService
	SubmissionServiceConfig   *submission_service.SubmissionService
	ResultsServiceConfig      *results_service.ResultsService
	StatsServiceConfig        *stats_service.StatsService
	EarningServiceConfig      *earning_service.EarningService
	ProctorManager            *proctor_service.Manager
}
