package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// UserAPI fetches the current authenticated user.
type UserAPI interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// AdminGate answers "may this user see admin views?". Any failure to confirm
// admin status counts as non-admin.
type AdminGate struct {
	api UserAPI
	log *zap.Logger
}

func NewAdminGate(api UserAPI, log *zap.Logger) *AdminGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminGate{api: api, log: log}
}

// IsAdmin fails closed: network errors, auth failures, and malformed
// responses all yield false.
func (g *AdminGate) IsAdmin(ctx context.Context) bool {
	user, err := g.api.CurrentUser(ctx)
	if err != nil {
		g.log.Warn("admin check failed, treating as non-admin", zap.Error(err))
		return false
	}
	return user != nil && user.Admin
}
