package domain

import "time"

const RoleUser = "user"

// User represents a registered account
type User struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	PhoneNumber   PhoneNumber   `json:"phoneNumber"`
	Timezone      string        `json:"timezone"`
	PasswordHash  string        `json:"-"`
	Role          string        `json:"role"`
	Confirmation  Confirmation  `json:"accountConfirmation"`
	PasswordReset PasswordReset `json:"-"`
	LastLoginAt   *time.Time    `json:"lastLoginAt"`
	Consent       bool          `json:"consent"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// PhoneNumber is the parsed form of the number supplied at registration
type PhoneNumber struct {
	CountryCode         string `json:"countryCode"`
	ISOCode             string `json:"isoCode"`
	InternationalNumber string `json:"internationalNumber"`
}

// Confirmation tracks the email confirmation state. Token and Code form a
// single-use pair and never leave the server except in the confirmation email.
type Confirmation struct {
	Status      bool       `json:"status"`
	Token       string     `json:"-"`
	Code        string     `json:"-"`
	ConfirmedAt *time.Time `json:"timestamp"`
}

type PasswordReset struct {
	Token       *string
	Expiry      *time.Time
	LastResetAt *time.Time
}

// IsConfirmed reports whether the account left the pending state
func (u *User) IsConfirmed() bool {
	return u.Confirmation.Status && u.Confirmation.ConfirmedAt != nil
}

// Confirm moves a pending account to confirmed at the given instant.
func (u *User) Confirm(at time.Time) {
	t := at.UTC()
	u.Confirmation.Status = true
	u.Confirmation.ConfirmedAt = &t
}
