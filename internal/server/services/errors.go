package services

import (
	"errors"
	"fmt"

	"github.com/finmetrics/portfolio-api/internal/common"
)

// internalError wraps a store failure as ErrorInternal, keeping the
// operation name and cause for the log line at the HTTP boundary. The
// client only ever sees the generic classification.
func internalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, common.ErrorInternal, err)
}

// translateLookup maps repository lookup errors to the service taxonomy:
// missing rows stay NotFound, anything else becomes an internal error
// carrying op so store details never reach the client unlogged.
func translateLookup[T any](op string, v T, err error) (T, error) {
	if err != nil {
		var zero T
		if errors.Is(err, common.ErrorNotFound) {
			return zero, common.ErrorNotFound
		}
		return zero, internalError(op, err)
	}
	return v, nil
}
