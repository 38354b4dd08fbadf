package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side failures and writes err as JSON.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	ctx := c.Request().Context()
	code := statusFor(err)
	msg := err.Error()
	reqID := common.RequestIDFromContext(ctx)
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, op+".failed", "request_id", reqID, "error", err)
		msg = http.StatusText(code)
	} else {
		h.logger.WarnContext(ctx, op+".rejected", "request_id", reqID, "status", code, "error", err)
	}
	return c.JSON(code, errorBody{Error: msg})
}
