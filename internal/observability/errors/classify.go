package errors

import (
	goerrors "errors"

	apperrors "github.com/onepos/storefront/internal/errors"
)

// Classify returns a normalized error class suitable for tagging
// metrics/logs. AppErrors classify by their code; anything else is
// "unknown". Raw error text never becomes a tag value.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.Code != "" {
		return string(appErr.Code)
	}
	return "unknown"
}
