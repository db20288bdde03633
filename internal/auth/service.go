package auth

import (
	"crypto/subtle"
	"log/slog"

	"github.com/jamlabs/reimbursement-service/internal"
	"github.com/jamlabs/reimbursement-service/internal/user"
)

// UserSource is the slice of the user store the gate needs.
type UserSource interface {
	GetByID(id int64) (*user.User, error)
}

// Service validates (user id, presented key) pairs against the user
// store. It has no side effects: no rate limiting, no key expiry, exact
// equality only.
type Service struct {
	users  UserSource
	logger *slog.Logger
}

func NewService(users UserSource, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// Authenticate returns the user matching userID when the presented
// credential equals the stored API key. The error never reveals which
// part of the key was wrong.
func (s *Service) Authenticate(userID int64, presentedKey string) (*user.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		s.logger.Warn("authentication failed: unknown user", "user_id", userID)
		return nil, internal.ErrUserNotFound
	}

	key := KeyFromHeader(presentedKey)
	if key == "" {
		s.logger.Warn("authentication failed: empty credential", "user_id", userID)
		return nil, internal.ErrMissingAPIKey
	}

	if subtle.ConstantTimeCompare([]byte(key), []byte(u.APIKey)) != 1 {
		s.logger.Warn("authentication failed: key mismatch", "user_id", userID)
		return nil, internal.ErrInvalidAPIKey
	}

	return u, nil
}
