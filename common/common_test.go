package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", fmt.Errorf("load post: %w", ErrNotFound), http.StatusNotFound},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"validation", NewValidationError("slug", "This slug is taken"), http.StatusBadRequest},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	assert.True(t, ve.Empty())
	assert.NoError(t, ve.OrNil())

	ve.Add("email", "This email is taken")
	ve.Add("email", "second message is ignored")
	ve.Add("username", "This username is taken")

	assert.Equal(t, "This email is taken", ve.Fields["email"])
	assert.Equal(t, "validation failed: email: This email is taken; username: This username is taken", ve.Error())
	assert.Error(t, ve.OrNil())
}

func TestFromBinding(t *testing.T) {
	type form struct {
		Email         string `validate:"required,email"`
		Password      string `validate:"required"`
		PasswordAgain string `validate:"eqfield=Password"`
	}

	err := validator.New().Struct(form{Email: "nope", Password: "a", PasswordAgain: "b"})
	ve := FromBinding(err)

	assert.Equal(t, "A valid email address is required", ve.Fields["email"])
	assert.Equal(t, "Passwords don't match", ve.Fields["password_again"])
	assert.NotContains(t, ve.Fields, "password")

	ve = FromBinding(errors.New("EOF"))
	assert.Contains(t, ve.Fields, "form")
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "password_again", snakeCase("PasswordAgain"))
	assert.Equal(t, "url", snakeCase("URL"))
	assert.Equal(t, "email", snakeCase("Email"))
}

func TestIPRoundTrip(t *testing.T) {
	assert.Equal(t, uint32(0x7f000001), IPToUint32("127.0.0.1"))
	assert.Equal(t, "10.1.2.3", Uint32ToIP(IPToUint32("10.1.2.3")))
	assert.Equal(t, uint32(0x0a010203), IPToUint32("::ffff:10.1.2.3"))
	assert.Equal(t, uint32(0), IPToUint32("2001:db8::1"))
	assert.Equal(t, uint32(0), IPToUint32("garbage"))
}
