// Package template renders password reset message bodies.
//
// Supported variables:
//
//	{{user.name}}, {{user.email}}
//	{{reset.url}}, {{reset.token}}, {{reset.expires_at}}
package template

import (
	"strings"
	"time"

	"github.com/sportevents/backend/internal/model"
)

const ResetSubject = "Reset your password"

const DefaultResetBody = `Hi {{user.name}},

A password reset was requested for {{user.email}}.
Open {{reset.url}} to choose a new password. The link expires at {{reset.expires_at}}.

If you did not request this, you can ignore this message.`

// ResetData holds the values substituted into a reset message body.
type ResetData struct {
	Name      string
	Email     string
	URL       string
	Token     string
	ExpiresAt time.Time
}

func ResetDataFromMessage(msg model.ResetMessage) ResetData {
	return ResetData{
		Name:      msg.Name,
		Email:     msg.To,
		URL:       msg.URL,
		Token:     msg.Token,
		ExpiresAt: msg.ExpiresAt,
	}
}

// RenderBody replaces the template variables in body. With a nil reset
// every variable renders as an empty string.
func RenderBody(body string, reset *ResetData) string {
	if reset == nil {
		return strings.NewReplacer(
			"{{user.name}}", "",
			"{{user.email}}", "",
			"{{reset.url}}", "",
			"{{reset.token}}", "",
			"{{reset.expires_at}}", "",
		).Replace(body)
	}

	expiresAt := ""
	if !reset.ExpiresAt.IsZero() {
		expiresAt = reset.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return strings.NewReplacer(
		"{{user.name}}", reset.Name,
		"{{user.email}}", reset.Email,
		"{{reset.url}}", reset.URL,
		"{{reset.token}}", reset.Token,
		"{{reset.expires_at}}", expiresAt,
	).Replace(body)
}
