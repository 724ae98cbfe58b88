package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// opError pairs a failure with the generic message clients see when it is unexpected.
type opError struct {
	Message string
	Err     error
}

func (e *opError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *opError) Unwrap() error {
	return e.Err
}

func fail(message string, err error) error {
	return &opError{Message: message, Err: err}
}

// statusFor maps an error to its HTTP status and client-facing message.
// Anything unrecognised is a 500 whose detail stays in the log.
func statusFor(err error) (int, string) {
	var ve *board.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}
	if errors.Is(err, board.ErrTaskNotFound) {
		return http.StatusNotFound, "Task not found"
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	var oe *opError
	if errors.As(err, &oe) {
		return http.StatusInternalServerError, oe.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Error: message})
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
