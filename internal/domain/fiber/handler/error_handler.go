package handler

import (
	"errors"
	"net/http"

	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps the error taxonomy onto shell API statuses and the message
// shown to the user.
func statusFor(err error) (int, string) {
	var (
		validation  *service.ValidationError
		notAuth     *service.NotAuthenticatedError
		expired     *service.SessionExpiredError
		authErr     *service.AuthError
		denied      *service.AccessDeniedError
		netErr      *service.NetworkError
		integrity   *service.DataIntegrityError
		unsupported *util.UnsupportedFormatError
		unavailable *util.ExtractionUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, validation.Message
	case errors.As(err, &notAuth):
		return fiber.StatusUnauthorized, "Not authenticated. Please login again."
	case errors.As(err, &expired):
		return fiber.StatusUnauthorized, "Session expired. Please login again."
	case errors.As(err, &authErr):
		return fiber.StatusUnauthorized, authErr.Message
	case errors.As(err, &denied):
		return fiber.StatusForbidden, denied.Message
	case errors.As(err, &unsupported):
		return fiber.StatusUnsupportedMediaType, "Please upload a PDF document"
	case errors.As(err, &unavailable):
		return fiber.StatusServiceUnavailable, "Resume parsing is not available"
	case errors.As(err, &netErr):
		return fiber.StatusBadGateway, "Network error. Please check your connection and try again."
	case errors.As(err, &integrity):
		return fiber.StatusBadGateway, "Backend returned inconsistent data"
	}
	if re, ok := service.AsRemote(err); ok {
		switch {
		case re.Status == http.StatusNotFound, re.Status == http.StatusConflict, re.Status == http.StatusBadRequest,
			re.Status == http.StatusUnprocessableEntity, re.Status == http.StatusRequestEntityTooLarge:
			return re.Status, re.Message
		}
		return fiber.StatusBadGateway, re.Message
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

func respondError(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    code,
		Message: msg,
	}, err)
}

func badRequest(c *fiber.Ctx, msg string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: msg,
	}, err)
}
