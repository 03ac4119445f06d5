package errutil

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

// Handle logs the error with its goerr context values and stack, if any.
// This is the single funnel for errors the background subsystem contains
// rather than propagates.
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
		return
	}
	logger.Error(msg, "error", err.Error())
}
