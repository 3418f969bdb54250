package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrNotFound, CodeNotFound},
		{ErrValidation, CodeValidation},
		{ErrDuplicateRequest, CodeDuplicateRequest},
		{ErrExpired, CodeExpired},
		{ErrForbidden, CodeForbidden},
		{errors.New("boom"), CodeServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, ErrorCode(tt.err))
	}
}

func TestErrorCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("plan abc: %w", ErrNotFound)
	assert.Equal(t, CodeNotFound, ErrorCode(err))

	err = fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrValidation))
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrDuplicateRequest, http.StatusConflict},
		{ErrExpired, http.StatusConflict},
		{ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err))
	}
}
