package errors

import (
	"fmt"
	"net/http"
	"testing"

	"aistats/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsUnderlyingCode(t *testing.T) {
	err := Wrap(NotFound("session"), "lookup failed")
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "lookup failed: session not found", err.Error())

	err = Wrapf(core.NewGroupCountError("sex", 3), "t-test on %s", "score")
	assert.Equal(t, core.CodeGroupCount, GetCode(err))
	assert.ErrorIs(t, err, core.ErrGroupCount)

	assert.Equal(t, CodeInternalError, GetCode(fmt.Errorf("boom")))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad json"))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("x"), http.StatusBadRequest},
		{core.NewVariableNotFoundError("age"), http.StatusNotFound},
		{core.ErrNoData, http.StatusUnprocessableEntity},
		{core.NewInsufficientDataError("correlation", 2, 3), http.StatusUnprocessableEntity},
		{core.NewTransportError("intent", fmt.Errorf("timeout")), http.StatusBadGateway},
		{New(CodeModelDisabled, "no key"), http.StatusServiceUnavailable},
		{fmt.Errorf("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
