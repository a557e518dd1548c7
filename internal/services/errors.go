package services

import (
	"errors"
	"fmt"

	"taskhub/internal/common"
	"taskhub/internal/customfields"
	"taskhub/internal/metrics"
	"taskhub/internal/repositories"
)

// notFoundAs turns a repository miss into a NotFound application error for resource.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return common.NewNotFoundError(resource)
	}
	return err
}

func customFieldError(err error) error {
	var verr *customfields.ValidationError
	if errors.As(err, &verr) {
		metrics.RecordCustomFieldRejection(verr.Code())
		return &common.AppError{
			Kind:    common.KindValidation,
			Code:    verr.Code(),
			Message: "custom field validation failed",
			Details: verr.Details(),
			Err:     err,
		}
	}
	return err
}

// wrapf adds context to infrastructure errors and passes AppErrors and nil through unchanged.
func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
