package service

import (
	"errors"
	"fmt"

	"cajachica/internal/model"
	"cajachica/pkg/apperror"

	"gorm.io/gorm"
)

// translateRepoErr maps storage errors into the service error taxonomy.
// Errors that already carry a kind pass through unchanged. A duplicate key is
// internal here; callers that know which constraint it guards use
// translateCreateErr.
func translateRepoErr(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Internal(fmt.Sprintf("%s: duplicate key", op), err)
	default:
		return apperror.Internal(op, err)
	}
}

// translateCreateErr classifies a failed fund request insert. Only a
// modification request can trip the open-modification index, so a duplicate
// key on an opening request is a code collision.
func translateCreateErr(err error, reqType model.RequestType) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) && reqType.IsModification() {
		return apperror.ModificationConflict("Ya existe una solicitud de modificación en curso para este fondo.")
	}
	return translateRepoErr(err, "fund request not found", "failed to create fund request")
}

// internalErr wraps an unexpected storage failure unless it is already classified
func internalErr(op string, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(op, err)
}
