package auth

import (
	"log/slog"

	"github.com/jamlabs/reimbursement-service/internal"
	"github.com/jamlabs/reimbursement-service/internal/user"
)

// Policy is the single authorization rule set consulted by both the HTTP
// boundary and the workflow service. Every mutating workflow operation
// except submission has a precondition on caller role; keeping the check
// here avoids re-deriving it per endpoint.
type Policy struct {
	logger *slog.Logger
}

func NewPolicy(logger *slog.Logger) *Policy {
	return &Policy{logger: logger}
}

// RequireManager rejects callers that do not hold the MANAGER role.
func (p *Policy) RequireManager(u *user.User) error {
	if u == nil {
		return internal.ErrMissingAPIKey
	}
	if !u.IsManager() {
		p.logger.Warn("access denied: manager role required",
			"user_id", u.ID,
			"role", u.Role)
		return internal.ErrManagerRequired
	}
	return nil
}
