package user_service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

// CreatorReferralCode derives the code a creator hands out to students.
func CreatorReferralCode(id uuid.UUID) string {
	return "DS" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func (u *UserService) GetUsersMap(
	ctx context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]database.User, error) {
	users := make(map[uuid.UUID]database.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	dbUsers, err := u.DB.GetUsersByIDs(ctx, ids)
	if err != nil {
		err = fmt.Errorf("%w, cannot fetch users by ids, %w", app_errors.ErrInternal, err)
		log.Error(err)
		return nil, err
	}
	for _, user := range dbUsers {
		users[user.ID] = user
	}
	return users, nil
}

func (u *UserService) GetUserProfile(ctx context.Context, userID uuid.UUID) (User, error) {
	dbUser, err := u.DB.GetUserByID(ctx, userID)
	if err != nil {
		err = app_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch user with id %v from db", userID),
		)
		return User{}, err
	}
	return ToUser(dbUser), nil
}

func (u *UserService) GetMe(ctx context.Context) (User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return User{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return User{}, err
	}
	return u.GetUserProfile(ctx, userID)
}

// SyncUser upserts the local projection of an identity service user.
// Creators get a referral code on first sync.
func (u *UserService) SyncUser(ctx context.Context, req SyncUserRequest) (User, error) {
	if err := service.ValidateInput(req); err != nil {
		return User{}, err
	}

	params := database.UpsertUserParams{
		ID:      req.ID,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Name:    strings.TrimSpace(req.Name),
		Role:    req.Role,
		College: req.College,
		Phone:   req.Phone,
	}
	if req.Role == database.RoleCreator {
		code := CreatorReferralCode(req.ID)
		params.ReferralCode = &code
	}
	if req.ReferredBy != nil && *req.ReferredBy != "" {
		creator, err := u.DB.GetCreatorByReferralCode(ctx, *req.ReferredBy)
		switch {
		case err == nil:
			params.ReferredBy = &creator.ID
		default:
			// an unknown code never blocks the user
			log.Warnf("user %s synced with unknown referral code %q", req.ID, *req.ReferredBy)
		}
	}

	dbUser, err := u.DB.UpsertUser(ctx, params)
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot upsert user %v", req.ID))
		return User{}, err
	}
	return ToUser(dbUser), nil
}

func (u *UserService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return User{}, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return User{}, err
	}
	if err := service.ValidateInput(req); err != nil {
		return User{}, err
	}

	dbUser, err := u.DB.UpdateUserProfile(ctx, database.UpdateUserProfileParams{
		ID:      userID,
		Name:    req.Name,
		College: req.College,
		Phone:   req.Phone,
		UpiID:   req.UpiID,
	})
	if err != nil {
		err = app_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update profile of user %v", userID))
		return User{}, err
	}
	log.Infof("user %s updated their profile", userID)
	return ToUser(dbUser), nil
}
