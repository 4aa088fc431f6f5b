package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iceymoss/weibo-trend/pkg/xerr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{xerr.ErrInvalidInput, http.StatusBadRequest},
		{xerr.REQUEST_PARAM_ERROR, http.StatusBadRequest},
		{xerr.ErrResourceNotFound, http.StatusNotFound},
		{xerr.ErrTaskNotFound, http.StatusNotFound},
		{xerr.ErrEndpointRemoved, http.StatusGone},
		{xerr.ErrConflict, http.StatusConflict},
		{xerr.DB_ERROR, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&CodeMsg{Code: tt.code}).HTTPStatus(), "code %d", tt.code)
	}
}

func TestFrom(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("load: %w", Wrap(xerr.DB_ERROR, "db", base))

	cm := From(wrapped)
	assert.Equal(t, xerr.DB_ERROR, cm.Code)
	assert.ErrorIs(t, wrapped, base)

	assert.Equal(t, xerr.SERVER_COMMON_ERROR, From(base).Code)
}
