package notify

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	KindConfirmation = "confirmation"
	KindWelcome      = "welcome"
)

// Message is a single outbound email
type Message struct {
	To      []string
	Subject string
	Text    string
	Kind    string
}

// ConfirmationURL builds the frontend link carrying the confirmation token and code
func ConfirmationURL(frontendURL, token, code string) string {
	base := strings.TrimRight(frontendURL, "/")
	return fmt.Sprintf("%s/confirmation/%s?%s", base, url.PathEscape(token), url.Values{"code": []string{code}}.Encode())
}

func ConfirmationMessage(name, email, confirmationURL string) Message {
	return Message{
		To:      []string{email},
		Subject: "Confirm your account",
		Text:    fmt.Sprintf("Hey %s, Please confirm your account by clicking the link below\n\n%s", name, confirmationURL),
		Kind:    KindConfirmation,
	}
}

func WelcomeMessage(email string) Message {
	return Message{
		To:      []string{email},
		Subject: "Welcome to the base!",
		Text:    "Account has been confirmed.",
		Kind:    KindWelcome,
	}
}
