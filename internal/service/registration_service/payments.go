package registration_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/email"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/earning_service"
)

func (r *RegistrationService) ListPayments(
	ctx context.Context,
	status *database.PaymentStatus,
) ([]Payment, error) {
	return r.listPayments(ctx, database.ListRegistrationsParams{PaymentStatus: status})
}

// PendingPayments returns the most recent pending registrations.
func (r *RegistrationService) PendingPayments(ctx context.Context) ([]Payment, error) {
	status := database.PaymentStatusPending
	limit := int32(pendingPaymentsLimit)
	return r.listPayments(ctx, database.ListRegistrationsParams{
		PaymentStatus: &status,
		Limit:         &limit,
	})
}

func (r *RegistrationService) listPayments(
	ctx context.Context,
	params database.ListRegistrationsParams,
) ([]Payment, error) {
	regs, err := r.DB.ListRegistrations(ctx, params)
	if err != nil {
		err = fmt.Errorf("%w, cannot list registrations, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(regs))
	for _, reg := range regs {
		userIDs = append(userIDs, reg.UserID)
	}
	users, err := r.UserServiceConfig.GetUsersMap(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	contests := map[uuid.UUID]database.Contest{}
	payments := make([]Payment, 0, len(regs))
	for _, reg := range regs {
		payment := Payment{Registration: contest_service.ToRegistration(reg)}
		if user, ok := users[reg.UserID]; ok {
			payment.UserName = user.Name
			payment.UserEmail = user.Email
		}

		contest, ok := contests[reg.ContestID]
		if !ok {
			contest, err = r.ContestServiceConfig.GetContestByID(ctx, reg.ContestID)
			if err != nil {
				return nil, err
			}
			contests[reg.ContestID] = contest
		}
		payment.ContestTitle = contest.Title
		payment.ContestFee = contest.Fee

		payments = append(payments, payment)
	}
	return payments, nil
}

// ApprovePayment approves a pending registration. The status change and the
// referral commission commit together; a failed commission fails the
// approval so it can be retried.
func (r *RegistrationService) ApprovePayment(
	ctx context.Context,
	registrationID uuid.UUID,
) (contest_service.Registration, error) {
	now := r.ContestServiceConfig.Now()

	var (
		approved database.Registration
		contest  database.Contest
		earning  *database.Earning
	)
	err := r.DB.ExecTx(ctx, func(q database.Querier) error {
		reg, err := r.getRegistration(ctx, q, registrationID)
		if err != nil {
			return err
		}
		if reg.PaymentStatus != database.PaymentStatusPending {
			log.Warnf("registration %s is already %s", registrationID, reg.PaymentStatus)
			return fmt.Errorf("%w, registration is %s", app_errors.ErrPaymentNotPending, reg.PaymentStatus)
		}

		approved, err = q.SetRegistrationStatus(ctx, database.SetRegistrationStatusParams{
			ID:            registrationID,
			PaymentStatus: database.PaymentStatusApproved,
			ApprovedAt:    &now,
		})
		if err != nil {
			return app_errors.HandleDBErrors(
				err,
				errMsgs,
				fmt.Sprintf("cannot approve registration %v", registrationID),
			)
		}

		contest, err = q.GetContestByID(ctx, reg.ContestID)
		if err != nil {
			return app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch contest %v", reg.ContestID))
		}

		earning, err = earning_service.TriggerCommission(ctx, q, approved, contest, now)
		return err
	})
	if err != nil {
		return contest_service.Registration{}, err
	}

	log.Infof("registration %s approved", registrationID)
	if earning != nil {
		r.Metrics.IncCommission()
	}
	r.afterApproval(ctx, approved, contest, earning != nil)
	return contest_service.ToRegistration(approved), nil
}

// afterApproval notifies downstream consumers. Failures are logged only, the
// approval is already committed.
func (r *RegistrationService) afterApproval(
	ctx context.Context,
	reg database.Registration,
	contest database.Contest,
	commissionPaid bool,
) {
	if r.Events != nil {
		err := r.Events.Publish(ctx, events.Event{
			Type:       events.TypePaymentApproved,
			Key:        reg.ContestID.String(),
			OccurredAt: *reg.ApprovedAt,
			Payload: events.PaymentApproved{
				RegistrationID: reg.ID,
				ContestID:      reg.ContestID,
				UserID:         reg.UserID,
				CommissionPaid: commissionPaid,
			},
		})
		if err != nil {
			log.WithField("registration", reg.ID).Warnf("cannot publish approval event, %v", err)
		}
	}

	if r.Mailer == nil {
		return
	}
	users, err := r.UserServiceConfig.GetUsersMap(ctx, []uuid.UUID{reg.UserID})
	if err != nil {
		return
	}
	user, ok := users[reg.UserID]
	if !ok {
		log.Warnf("no profile for user %s, skipping approval mail", reg.UserID)
		return
	}
	if err := r.Mailer.Send(ctx, email.PaymentApprovedMail(user.Email, user.Name, contest.Title)); err != nil {
		log.WithField("registration", reg.ID).Warnf("cannot queue approval mail, %v", err)
	}
}

func (r *RegistrationService) RejectPayment(
	ctx context.Context,
	registrationID uuid.UUID,
) (contest_service.Registration, error) {
	var rejected database.Registration
	err := r.DB.ExecTx(ctx, func(q database.Querier) error {
		reg, err := r.getRegistration(ctx, q, registrationID)
		if err != nil {
			return err
		}
		if reg.PaymentStatus != database.PaymentStatusPending {
			log.Warnf("registration %s is already %s", registrationID, reg.PaymentStatus)
			return fmt.Errorf("%w, registration is %s", app_errors.ErrPaymentNotPending, reg.PaymentStatus)
		}
		rejected, err = q.SetRegistrationStatus(ctx, database.SetRegistrationStatusParams{
			ID:            registrationID,
			PaymentStatus: database.PaymentStatusRejected,
		})
		if err != nil {
			return app_errors.HandleDBErrors(
				err,
				errMsgs,
				fmt.Sprintf("cannot reject registration %v", registrationID),
			)
		}
		return nil
	})
	if err != nil {
		return contest_service.Registration{}, err
	}
	log.Infof("registration %s rejected", registrationID)
	return contest_service.ToRegistration(rejected), nil
}
