package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error with a message, including goerr values and stack when present
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}
}

// HandleHTTP logs the error and writes an HTTP error response. Internal details are only
// exposed for 4xx responses.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	Handle(ctx, err, "HTTP error")

	msg := err.Error()
	if statusCode >= http.StatusInternalServerError {
		msg = http.StatusText(statusCode)
	}
	http.Error(w, msg, statusCode)
}
