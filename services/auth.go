package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
)

// ValidatePasswordStrength requires at least five ASCII letters and one digit.
func ValidatePasswordStrength(code string) error {
	letters, digits := 0, 0
	for _, r := range code {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		case r >= '0' && r <= '9':
			digits++
		}
	}
	if letters < 5 || digits < 1 {
		return validationError("Password harus mengandung minimal 5 huruf dan 1 angka")
	}
	return nil
}

// Auth implements login and credential recovery.
type Auth struct {
	registry *Registry
	session  *Session
	log      *zap.Logger
}

func NewAuth(registry *Registry, session *Session, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auth{registry: registry, session: session, log: logger}
}

// Login checks the credentials and makes the member the current session.
// A mismatch returns an auth error and leaves the session untouched.
func (a *Auth) Login(ctx context.Context, id, code string) (*models.Member, error) {
	if strings.TrimSpace(id) == "" || code == "" {
		return nil, validationError("ID Member dan Password wajib diisi")
	}
	m, err := a.registry.FindByCredentials(ctx, id, code)
	if err != nil {
		a.log.Info("login rejected", zap.String("member_id", NormalizeID(id)))
		return nil, err
	}
	if err := a.session.Set(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Logout ends the current member session.
func (a *Auth) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// Recover resets the login code after the security question is answered.
// The session is not changed; the member logs in again with the new code.
func (a *Auth) Recover(ctx context.Context, id, motherName, newCode string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(motherName) == "" || newCode == "" {
		return validationError("Semua kolom wajib diisi")
	}
	return a.registry.ResetCredentials(ctx, id, motherName, newCode)
}
