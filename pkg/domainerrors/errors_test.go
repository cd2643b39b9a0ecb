package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "child record not found")))
	assert.Equal(t, CodeValidation, CodeOf(fmt.Errorf("handler: %w", New(CodeValidation, "name is required"))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("connection refused")))
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := Wrap(cause, CodeInternal, "storage failure")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "deadlock")
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("service: %w", New(CodeAccessDenied, "not authorized to view this record"))
	assert.ErrorIs(t, err, &Error{Code: CodeAccessDenied})
	assert.NotErrorIs(t, err, &Error{Code: CodeNotFound})
}

func TestMessageForHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal error", MessageFor(Wrap(errors.New("dial tcp: refused"), CodeInternal, "storage failure")))
	assert.Equal(t, "internal error", MessageFor(errors.New("raw")))
	assert.Equal(t, "target user not found", MessageFor(New(CodeNotFound, "target user not found")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeAccessDenied: http.StatusForbidden,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeTimeout:      http.StatusGatewayTimeout,
		CodeInternal:     http.StatusInternalServerError,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
