package registration_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
)

func userFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

// Register enrolls the caller in a contest with a pending payment. The
// storage unique constraint on (user, contest) settles concurrent attempts.
func (r *RegistrationService) Register(
	ctx context.Context,
	contestID uuid.UUID,
	req RegisterRequest,
) (contest_service.Registration, error) {
	if err := service.ValidateInput(req); err != nil {
		return contest_service.Registration{}, err
	}
	userID, err := userFromContext(ctx)
	if err != nil {
		return contest_service.Registration{}, err
	}

	contest, err := r.ContestServiceConfig.GetContestByID(ctx, contestID)
	if err != nil {
		return contest_service.Registration{}, err
	}
	now := r.ContestServiceConfig.Now()
	if contest_service.ComputeStatus(contest, now) == database.ContestStatusCompleted {
		err := fmt.Errorf("%w, registrations are closed", app_errors.ErrContestEnded)
		log.Warnf("user %s tried to register for completed contest %s", userID, contestID)
		return contest_service.Registration{}, err
	}

	existing, err := r.ContestServiceConfig.GetRegistration(ctx, userID, contestID)
	if err != nil {
		return contest_service.Registration{}, err
	}
	if existing != nil {
		log.Warnf("user %s is already registered for contest %s", userID, contestID)
		return contest_service.Registration{}, app_errors.ErrAlreadyRegistered
	}

	if contest.MaxParticipants != nil {
		count, err := r.ContestServiceConfig.RegistrationsCount(ctx, contestID)
		if err != nil {
			return contest_service.Registration{}, err
		}
		if count >= int64(*contest.MaxParticipants) {
			err := fmt.Errorf("%w, contest is full", app_errors.ErrInvalidRequest)
			log.Warnf("user %s: contest %s: %v", userID, contestID, err)
			return contest_service.Registration{}, err
		}
	}

	reg, err := r.DB.CreateRegistration(ctx, database.CreateRegistrationParams{
		ContestID:         contestID,
		UserID:            userID,
		PaymentScreenshot: req.PaymentScreenshot,
		ReferralCode:      normalizeCode(req.ReferralCode),
		RegisteredAt:      now,
	})
	if err != nil {
		if app_errors.IsUniqueViolation(err, database.ConstraintRegistrationUserContest) {
			log.Warnf("user %s lost a registration race for contest %s", userID, contestID)
			return contest_service.Registration{}, app_errors.ErrAlreadyRegistered
		}
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot register user %v for contest %v", userID, contestID),
		)
		return contest_service.Registration{}, err
	}

	log.Infof("user %s registered for contest %s", userID, contestID)
	return contest_service.ToRegistration(reg), nil
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.ToUpper(strings.TrimSpace(*code))
	if c == "" {
		return nil
	}
	return &c
}

// UploadPayment attaches a payment proof to the caller's own pending
// registration.
func (r *RegistrationService) UploadPayment(
	ctx context.Context,
	registrationID uuid.UUID,
	req UploadPaymentRequest,
) (contest_service.Registration, error) {
	if err := service.ValidateInput(req); err != nil {
		return contest_service.Registration{}, err
	}
	userID, err := userFromContext(ctx)
	if err != nil {
		return contest_service.Registration{}, err
	}

	var updated database.Registration
	err = r.DB.ExecTx(ctx, func(q database.Querier) error {
		reg, err := r.getRegistration(ctx, q, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != userID {
			log.Warnf("user %s tried to upload payment for registration %s", userID, registrationID)
			return fmt.Errorf("%w, registration belongs to another user", app_errors.ErrUnAuthorized)
		}
		if reg.PaymentStatus != database.PaymentStatusPending {
			log.Warnf("user %s tried to re-upload payment for %s registration %s", userID, reg.PaymentStatus, registrationID)
			return app_errors.ErrPaymentNotPending
		}

		updated, err = q.UpdateRegistrationScreenshot(ctx, registrationID, req.PaymentScreenshot)
		if errors.Is(err, pgx.ErrNoRows) {
			// status left pending between the read and the write
			return app_errors.ErrPaymentNotPending
		}
		if err != nil {
			return app_errors.HandleDBErrors(
				err,
				errMsgs,
				fmt.Sprintf("cannot update payment of registration %v", registrationID),
			)
		}
		return nil
	})
	if err != nil {
		return contest_service.Registration{}, err
	}
	return contest_service.ToRegistration(updated), nil
}

func (r *RegistrationService) getRegistration(
	ctx context.Context,
	q database.Querier,
	id uuid.UUID,
) (database.Registration, error) {
	reg, err := q.GetRegistrationByIDForUpdate(ctx, id)
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch registration %v", id))
		if errors.Is(err, app_errors.ErrNotFound) {
			err = fmt.Errorf("%w, registration not found", app_errors.ErrNotFound)
		}
		return database.Registration{}, err
	}
	return reg, nil
}

// MyRegistrations lists the caller's registrations, newest first.
func (r *RegistrationService) MyRegistrations(ctx context.Context) ([]MyRegistration, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	regs, err := r.DB.ListRegistrations(ctx, database.ListRegistrationsParams{UserID: &userID})
	if err != nil {
		err = fmt.Errorf("%w, cannot list registrations of %v, %w", app_errors.ErrInternal, userID, err)
		log.Error(err)
		return nil, err
	}

	now := r.ContestServiceConfig.Now()
	out := make([]MyRegistration, 0, len(regs))
	for _, reg := range regs {
		item := MyRegistration{Registration: contest_service.ToRegistration(reg)}

		contest, err := r.DB.GetContestByID(ctx, reg.ContestID)
		if err == nil {
			view := contest_service.ToContest(contest, now)
			item.Contest = &view
		} else if err = app_errors.HandleDBErrors(
			err, errMsgs, fmt.Sprintf("cannot fetch contest %v", reg.ContestID),
		); !errors.Is(err, app_errors.ErrNotFound) {
			return nil, err
		}

		attempt, err := r.DB.GetAttemptByUserAndContest(ctx, userID, reg.ContestID)
		if err == nil {
			item.Attempt = toAttemptSummary(attempt)
		} else if err = app_errors.HandleDBErrors(
			err, errMsgs, fmt.Sprintf("cannot fetch attempt for contest %v", reg.ContestID),
		); !errors.Is(err, app_errors.ErrNotFound) {
			return nil, err
		}

		out = append(out, item)
	}
	return out, nil
}
