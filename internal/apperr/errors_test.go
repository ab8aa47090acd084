package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfUnwrapsThroughChain(t *testing.T) {
	base := NotFound("sow_document", "sow-1")
	wrapped := fmt.Errorf("loading document: %w", base)

	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load approval steps")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[error]int{
		InvalidInput("value", "must be non-negative"): http.StatusBadRequest,
		NotFound("project", "p-1"):                    http.StatusNotFound,
		Conflict("document is not a draft"):           http.StatusConflict,
		New(CodeUnauthorized, "nope"):                 http.StatusUnauthorized,
		errors.New("boom"):                            http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
