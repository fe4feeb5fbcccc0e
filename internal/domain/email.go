package domain

import (
	"net/mail"
	"strings"
)

// Email is a validated, normalized (lowercase, trimmed) address. Compared by
// value.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Email{}, Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return Email{}, Errorf("invalid email format: %s", raw)
	}
	return Email{value: strings.ToLower(raw)}, nil
}

// EmailFromStore trusts a value that was validated before it was stored.
func EmailFromStore(v string) Email { return Email{value: v} }

func (e Email) String() string { return e.value }

func (e Email) IsZero() bool { return e.value == "" }
