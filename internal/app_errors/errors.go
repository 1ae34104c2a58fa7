package app_errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

var (
	ErrInternal                  = errors.New("internal service error. please try again later")
	ErrInvalidRequest            = errors.New("invalid request")
	ErrInvalidInput              = errors.New("invalid input")
	ErrInvalidRequestCredentials = errors.New("invalid request credentials")
	ErrUnAuthorized              = errors.New("user not allowed to perform this action")
	ErrNotFound                  = errors.New("entity not found")
	ErrEntityAlreadyExist        = errors.New("entity with given key already exist")
	ErrPartialResult             = errors.New("unable to fetch complete list of requested entities")
	ErrEmailServiceStopped       = errors.New("email service is stopped currently")

	// registration gate
	ErrNotRegistered     = errors.New("payment not approved or not registered")
	ErrContestNotStarted = errors.New("contest has not started yet")
	ErrContestEnded      = errors.New("contest has ended")

	ErrAlreadyRegistered   = errors.New("already registered for this contest")
	ErrAlreadySubmitted    = errors.New("answers already submitted for this contest")
	ErrPaymentNotPending   = errors.New("payment is no longer pending")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSessionNotActive    = errors.New("proctoring session is not active")
)

// HandleDBErrors converts a storage error into one of the sentinel errors above.
// errMsgs maps a pg error code to a map of constraint name -> user readable message.
func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("%s, %v", contextMessage, ErrNotFound)
		return ErrNotFound
	}

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		err = fmt.Errorf("%w, %s, %w", ErrInternal, contextMessage, err)
		log.Error(err)
		return err
	}

	switch pgErr.Code {
	case CodeForeignKeyConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeForeignKeyConstraint], ErrInvalidRequest)
	case CodeUniqueConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeUniqueConstraint], ErrEntityAlreadyExist)
	}

	// unknown error
	err = fmt.Errorf("%w, %s, %w", ErrInternal, contextMessage, err)
	log.Error(err)
	return err
}

func handleConstraintError(
	pgErr *pgconn.PgError,
	msgs map[string]string,
	kind error,
) error {
	msg, ok := msgs[pgErr.ConstraintName]
	if !ok {
		log.Warnf("unmapped constraint violation %s (%s)", pgErr.ConstraintName, pgErr.Code)
		msg = "request conflicts with existing data"
	}
	err := fmt.Errorf("%w, %s", kind, msg)
	log.Warn(err)
	return err
}

// IsUniqueViolation reports whether err was caused by the named unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == CodeUniqueConstraint && pgErr.ConstraintName == constraint
}
