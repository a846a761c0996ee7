package dto

import (
	"errors"
	"regexp"
	"strings"

	"github.com/adeelchainz/base-server/internal/utils"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var phoneNumberPattern = regexp.MustCompile(`^\+?[0-9]+$`)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Consent     bool   `json:"consent"`
}

// Normalize trims every text field and lowercases the email. The password
// is trimmed too, so surrounding blanks never reach the strength rule.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = utils.SanitizeEmail(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Password = strings.TrimSpace(r.Password)
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 72)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.PhoneNumber,
			validation.Required,
			validation.Length(4, 20),
			validation.Match(phoneNumberPattern).Error("must contain digits only"),
		),
		validation.Field(&r.Password, validation.Required, validation.By(strongPassword)),
		validation.Field(&r.Consent, validation.Required.Error("must be accepted")),
	)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = utils.SanitizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 24)),
	)
}

func strongPassword(value interface{}) error {
	password, _ := value.(string)
	if !utils.ValidatePassword(password) {
		return errors.New("must be 8-16 characters with upper and lower case letters, a number and a symbol, and no spaces")
	}
	return nil
}
