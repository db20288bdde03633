package user

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/jamlabs/reimbursement-service/internal"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetAll() ([]*User, error)
	UpdateNotify(id int64, notify bool) error
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

// GenerateAPIKey returns a cryptographically random bearer credential.
// The key is issued once at account creation and never recomputed.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CreateUser validates the payload, hashes the password, issues the API
// key and persists the record. The returned user carries the key; it is
// the caller's only chance to read it.
func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("user validation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, internal.NewInternalError("failed to issue api key", err)
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         Role(dto.Role),
		Notify:       true,
		APIKey:       apiKey,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created",
		"user_id", u.ID,
		"role", u.Role)

	return u, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) ListAll() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// SetNotify toggles the email subscription of the target user. Only the
// target themself or a manager may change it.
func (s *Service) SetNotify(targetID int64, enabled bool, actor *User) (*User, error) {
	if actor.ID != targetID && !actor.IsManager() {
		s.logger.Warn("notify change denied",
			"actor_id", actor.ID,
			"target_id", targetID)
		return nil, internal.ErrManagerRequired
	}

	target, err := s.repo.GetByID(targetID)
	if err != nil {
		s.logger.Error("user not found for notify change", "error", err, "user_id", targetID)
		return nil, internal.ErrUserNotFound
	}

	if err := s.repo.UpdateNotify(targetID, enabled); err != nil {
		s.logger.Error("failed to update notify flag", "error", err, "user_id", targetID)
		return nil, err
	}
	target.Notify = enabled

	s.logger.Info("notification subscription updated",
		"user_id", targetID,
		"notify", enabled)

	return target, nil
}
