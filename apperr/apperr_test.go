package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFrom(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	verr := validator.New().Struct(payload{})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"app error passes through", Forbidden("Not authorized"), http.StatusForbidden, "Not authorized"},
		{"wrapped app error", fmt.Errorf("ctx: %w", BadRequest("bad")), http.StatusBadRequest, "bad"},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "Resource not found"},
		{"validation", verr, http.StatusBadRequest, "Email is required"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestBinding(t *testing.T) {
	type payload struct {
		Rating int `validate:"min=1,max=5"`
	}
	verr := validator.New().Struct(payload{Rating: 9})
	assert.Equal(t, "Rating cannot exceed 5", Binding(verr).Message)

	got := Binding(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "Invalid request: unexpected EOF", got.Message)
}
