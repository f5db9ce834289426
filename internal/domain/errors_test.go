package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"required", ErrCandidateIDRequired, http.StatusBadRequest},
		{"invalid", fmt.Errorf("resolve: %w", ErrInvalidCandidateID), http.StatusBadRequest},
		{"not found", ErrCandidateNotFound, http.StatusNotFound},
		{"report not found", ErrReportNotFound, http.StatusNotFound},
		{"card missing", ErrCareerCardMissing, http.StatusUnprocessableEntity},
		{"namespace", ErrInvalidCandidateNamespace, http.StatusInternalServerError},
		{"scoring config", ErrScoringServiceMisconfigured, http.StatusInternalServerError},
		{"store config", ErrReportStoreMisconfigured, http.StatusInternalServerError},
		{"upstream", &UpstreamError{Service: "scoring", StatusCode: 503, Kind: ErrScoringRequestFailed}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("upsert: %w", &UpstreamError{
		Service:    "report store",
		StatusCode: 409,
		Body:       `{"message":"conflict"}`,
		Kind:       ErrReportStoreRequestFailed,
	})

	assert.ErrorIs(t, err, ErrReportStoreRequestFailed)
	assert.NotErrorIs(t, err, ErrScoringRequestFailed)

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, 409, upstream.StatusCode)
	assert.Contains(t, err.Error(), "status 409")
	assert.Equal(t, "REPORT_STORE_REQUEST_FAILED", ErrorCode(err))
}
