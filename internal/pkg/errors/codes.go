package errors

import "net/http"

var (
	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInvalidReportID = New(
		"INVALID_REPORT_ID",
		"Invalid compliance report ID",
		http.StatusBadRequest,
	)

	ErrReportNotFound = New(
		"REPORT_NOT_FOUND",
		"Compliance report has no supply equipment rows",
		http.StatusNotFound,
	)

	ErrNoValidationRun = New(
		"NO_VALIDATION_RUN",
		"No validation run for this report",
		http.StatusNotFound,
	)

	ErrEmptyBatch = New(
		"EMPTY_BATCH",
		"Input batch contains no rows",
		http.StatusBadRequest,
	)

	ErrClassificationFailed = &AppError{
		Code:       "CLASSIFICATION_FAILED",
		Message:    "Classification failed, retry",
		Retryable:  true,
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
