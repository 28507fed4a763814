package util

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("clash", nil), "CONFLICT", http.StatusConflict},
		{NewInvalidTransition("open", "resolved"), "INVALID_TRANSITION", http.StatusConflict},
		{NewAlreadyAssigned("ticket", nil), "ALREADY_ASSIGNED", http.StatusConflict},
		{NewAlreadyMember(nil), "ALREADY_MEMBER", http.StatusConflict},
		{NewNetworkError(errors.New("dial tcp")), "NETWORK_ERROR", http.StatusBadGateway},
		{NewInternalError(nil), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		require.Equal(t, tc.code, domainErr.Code)
		require.Equal(t, tc.status, domainErr.HTTPStatus)
		require.True(t, IsCode(tc.err, tc.code))
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := NewInvalidTransition("pending", "approved")
	domainErr := ToDomainError(err)
	require.Equal(t, "pending", domainErr.Details["from"])
	require.Equal(t, "approved", domainErr.Details["to"])
}

func TestToDomainErrorClassifiesConnectivity(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	domainErr := ToDomainError(fmt.Errorf("list tickets: %w", cause))
	require.Equal(t, "NETWORK_ERROR", domainErr.Code)
	require.Equal(t, http.StatusBadGateway, domainErr.HTTPStatus)
	require.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	domainErr := ToDomainError(cause)
	require.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	require.ErrorIs(t, domainErr, cause)

	require.Nil(t, ToDomainError(nil))
	require.False(t, IsCode(cause, "INTERNAL_ERROR"))
}
