package handlers

import (
	"errors"
	"net/http"

	"taskhub/internal/access"
	"taskhub/internal/common"
	"taskhub/internal/logger"
	"taskhub/internal/middleware"
	"taskhub/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var kindStatus = map[common.ErrorKind]int{
	common.KindNotFound:     http.StatusNotFound,
	common.KindForbidden:    http.StatusForbidden,
	common.KindConflict:     http.StatusConflict,
	common.KindValidation:   http.StatusBadRequest,
	common.KindUnauthorized: http.StatusUnauthorized,
}

// respondError renders service errors. Anything that is not an AppError is
// logged and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		return c.JSON(status, common.CreateErrorResponse(appErr.Code, appErr.Message, appErr.Details))
	}

	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed", fields))
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		return c.JSON(httpErr.Code, common.CreateErrorResponse("CLIENT_ERROR", http.StatusText(httpErr.Code), nil))
	}

	logger.FromContext(c).Error("request failed", zap.Error(err))
	return common.SendServerError(c, "Internal server error")
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return common.NewValidationError("INVALID_REQUEST", "Invalid request format", nil)
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// normalizePage applies the default and maximum page size in place so the
// response echoes the window that was actually queried.
func normalizePage(limit, offset *int) error {
	l, o, err := common.ValidatePaginationParams(*limit, *offset)
	if err != nil {
		return common.NewValidationError("", err.Error(), nil)
	}
	*limit, *offset = l, o
	return nil
}

func currentActor(c echo.Context) (access.AuthContext, error) {
	actor, err := middleware.Actor(c)
	if err != nil {
		return access.AuthContext{}, common.NewUnauthorizedError("authentication required")
	}
	return actor, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, common.NewValidationError("INVALID_ID", err.Error(), map[string]string{name: err.Error()})
	}
	return id, nil
}
