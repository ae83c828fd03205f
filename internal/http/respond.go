package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
)

const maxBodyBytes = 1 << 20

const (
	lockedEditMessage   = "Transaction cannot be edited after 12 hours"
	lockedDeleteMessage = "Transaction cannot be deleted after 12 hours"
)

// validationErrors map to 400.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrInvalidType,
	core.ErrInvalidDivision,
	core.ErrEmptyCategory,
	core.ErrEmptyAccount,
	core.ErrMissingDate,
	core.ErrSameAccount,
	core.ErrEmptyName,
	core.ErrEmptyColor,
	core.ErrInvalidPeriod,
	ledger.ErrCategoryTypeMismatch,
	errBadRequest,
}

var errBadRequest = errors.New("bad request")

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case ledger.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrTransactionLocked):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrAccountInUse), errors.Is(err, ledger.ErrDuplicateAccount):
		return http.StatusConflict
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// messageFor is the envelope message for err. Internal errors are not echoed.
func messageFor(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK[T any](w http.ResponseWriter, data T) {
	writeJSON(w, http.StatusOK, api.OK(data))
}

func writeMessage[T any](w http.ResponseWriter, status int, message string, data T) {
	writeJSON(w, status, api.OKWithMessage(message, data))
}

// writeError logs the failure and writes the error envelope. op selects the
// message for a locked transaction.
func writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	message := messageFor(err, status)
	if status == http.StatusForbidden {
		message = lockedEditMessage
		if op == log.OpDelete {
			message = lockedDeleteMessage
		}
	}

	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithOperation(op).WithError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields.WithErrorType(log.ErrorTypeInternal).ToSlice()...)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields.WithErrorType(errorType(status)).ToSlice()...)
	}
	writeJSON(w, status, api.Fail(message))
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusConflict, http.StatusForbidden:
		return log.ErrorTypeConflict
	default:
		return log.ErrorTypeValidation
	}
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", errBadRequest)
	}
	return nil
}

// queryRange reads startDate and endDate. When required is false missing
// bounds are returned as zero times.
func queryRange(r *http.Request, required bool) (start, end time.Time, err error) {
	q := r.URL.Query()
	if required && (strings.TrimSpace(q.Get("startDate")) == "" || strings.TrimSpace(q.Get("endDate")) == "") {
		return start, end, fmt.Errorf("%w: startDate and endDate are required", errBadRequest)
	}
	f, err := api.ParseFilter(url.Values{"startDate": q["startDate"], "endDate": q["endDate"]})
	if err != nil {
		return start, end, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return start, end, fmt.Errorf("%w: endDate is before startDate", errBadRequest)
	}
	return f.StartDate, f.EndDate, nil
}
