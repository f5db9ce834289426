package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrCandidateIDRequired         = errors.New("candidate id is required")
	ErrInvalidCandidateID          = errors.New("candidate id must be a UUID or a positive integer")
	ErrInvalidCandidateNamespace   = errors.New("candidate namespace is not a valid UUID")
	ErrCandidateNotFound           = errors.New("candidate application not found")
	ErrCareerCardMissing           = errors.New("career card data is missing")
	ErrReportNotFound              = errors.New("career report not found")
	ErrScoringServiceMisconfigured = errors.New("scoring service is not configured")
	ErrScoringRequestFailed        = errors.New("scoring request failed")
	ErrScoringResponseInvalid      = errors.New("scoring response is invalid")
	ErrReportStoreMisconfigured    = errors.New("report store is not configured")
	ErrReportStoreRequestFailed    = errors.New("report store request failed")
)

// UpstreamError carries the status and body returned by a downstream service.
// It unwraps to Kind so callers can match with errors.Is.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Kind       error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v: %s", e.Service, e.Kind, e.Body)
	}
	return fmt.Sprintf("%s: %v with status %d: %s", e.Service, e.Kind, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{ErrCandidateIDRequired, "CANDIDATE_ID_REQUIRED", http.StatusBadRequest},
	{ErrInvalidCandidateID, "INVALID_CANDIDATE_ID", http.StatusBadRequest},
	{ErrCandidateNotFound, "CANDIDATE_NOT_FOUND", http.StatusNotFound},
	{ErrReportNotFound, "REPORT_NOT_FOUND", http.StatusNotFound},
	{ErrCareerCardMissing, "CAREER_CARD_MISSING", http.StatusUnprocessableEntity},
	{ErrInvalidCandidateNamespace, "INVALID_CANDIDATE_NAMESPACE", http.StatusInternalServerError},
	{ErrScoringServiceMisconfigured, "SCORING_SERVICE_MISCONFIGURED", http.StatusInternalServerError},
	{ErrReportStoreMisconfigured, "REPORT_STORE_MISCONFIGURED", http.StatusInternalServerError},
	{ErrScoringRequestFailed, "SCORING_REQUEST_FAILED", http.StatusBadGateway},
	{ErrScoringResponseInvalid, "SCORING_RESPONSE_INVALID", http.StatusBadGateway},
	{ErrReportStoreRequestFailed, "REPORT_STORE_REQUEST_FAILED", http.StatusBadGateway},
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// ErrorCode returns a stable machine-readable code for err, or "INTERNAL_ERROR".
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "INTERNAL_ERROR"
}
