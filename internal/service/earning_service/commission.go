package earning_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
)

// TriggerCommission records the referral commission for an approved
// registration. It runs on q so the caller can keep it in the approval
// transaction. A nil earning with nil error means nothing was owed.
func TriggerCommission(
	ctx context.Context,
	q database.Querier,
	reg database.Registration,
	contest database.Contest,
	now time.Time,
) (*database.Earning, error) {
	if reg.ReferralCode == nil || strings.TrimSpace(*reg.ReferralCode) == "" {
		return nil, nil
	}
	if contest.CommissionPerRegistration <= 0 {
		return nil, nil
	}

	code := strings.ToUpper(strings.TrimSpace(*reg.ReferralCode))
	creator, err := q.GetCreatorByReferralCode(ctx, code)
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot look up creator for referral code %s", code),
		)
		if errors.Is(err, app_errors.ErrNotFound) {
			log.Infof("referral code %s of registration %s matches no creator", code, reg.ID)
			return nil, nil
		}
		return nil, err
	}

	earning, err := q.CreateEarning(ctx, database.CreateEarningParams{
		CreatorID:      creator.ID,
		RegistrationID: reg.ID,
		ContestID:      contest.ID,
		Amount:         contest.CommissionPerRegistration,
		EarnedAt:       now,
	})
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot create commission for registration %v", reg.ID),
		)
		return nil, err
	}

	log.WithFields(log.Fields{
		"creator":      creator.ID,
		"registration": reg.ID,
		"amount":       earning.Amount,
	}).Info("commission recorded")
	return &earning, nil
}
