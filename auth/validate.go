package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"rtchat/errs"
)

var validate = validator.New()

type SignupRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

// ValidateSignup checks email shape and password bounds. The 72-byte upper
// bound is bcrypt's input limit.
func ValidateSignup(req SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return nil
}
