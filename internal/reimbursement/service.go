package reimbursement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jamlabs/reimbursement-service/internal"
	"github.com/jamlabs/reimbursement-service/internal/core/events"
	"github.com/jamlabs/reimbursement-service/internal/user"
)

// Repository defines the data access methods for reimbursements.
type Repository interface {
	Create(r *Reimbursement) error
	GetByID(id int64) (*Reimbursement, error)
	GetByUserID(userID int64) ([]*Reimbursement, error)
	GetAll() ([]*Reimbursement, error)
	UpdateStatus(id int64, status string) error
	UpdateOwner(id int64, userID int64) error
}

// UserSource is the slice of the user store the workflow needs for
// owner lookups. Ownership is a foreign key, not an object graph.
type UserSource interface {
	GetByID(id int64) (*user.User, error)
}

// RolePolicy gates the manager-only operations.
type RolePolicy interface {
	RequireManager(u *user.User) error
}

// Publisher emits post-commit side effects.
type Publisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// Service orchestrates the submit/approve/deny/reassign workflow. Every
// operation persists first and only then publishes notification events;
// a failed or missing notification channel never fails the operation.
type Service struct {
	repo      Repository
	users     UserSource
	policy    RolePolicy
	publisher Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, users UserSource, policy RolePolicy, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

// ListOwn returns the caller's own records. No role restriction.
func (s *Service) ListOwn(owner *user.User) ([]*Reimbursement, error) {
	records, err := s.repo.GetByUserID(owner.ID)
	if err != nil {
		s.logger.Error("failed to list reimbursements", "error", err, "user_id", owner.ID)
		return nil, err
	}
	return records, nil
}

// ListAll returns every record in the store. Manager only.
func (s *Service) ListAll(caller *user.User) ([]*Reimbursement, error) {
	if err := s.policy.RequireManager(caller); err != nil {
		return nil, err
	}

	records, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list all reimbursements", "error", err)
		return nil, err
	}

	s.logger.Info("manager listed all reimbursements",
		"manager_id", caller.ID,
		"count", len(records))

	return records, nil
}

// Submit persists a new pending reimbursement owned by the caller and
// acknowledges it by email when the owner is subscribed.
func (s *Service) Submit(owner *user.User, dto SubmitDTO) (*Reimbursement, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("reimbursement validation failed", "error", err, "user_id", owner.ID)
		return nil, err
	}

	r := &Reimbursement{
		RequestDate: dto.RequestDate,
		Description: dto.Description,
		Amount:      dto.Amount,
		Status:      StatusPending,
		UserID:      owner.ID,
	}

	if err := s.repo.Create(r); err != nil {
		s.logger.Error("failed to create reimbursement", "error", err, "user_id", owner.ID)
		return nil, err
	}

	s.logger.Info("reimbursement submitted",
		"reimbursement_id", r.ID,
		"user_id", owner.ID,
		"amount", r.Amount.String())

	if owner.Notify {
		s.notify(owner.Email,
			"New Reimbursement Request Created",
			"Your new reimbursement request is under pending review.")
	}

	return r, nil
}

// Approve sets the approved status. Re-approving an approved record is
// idempotent; no transition back to pending exists.
func (s *Service) Approve(id int64, manager *user.User) (*Reimbursement, error) {
	return s.setStatus(id, manager, StatusApproved)
}

// Deny is symmetric to Approve.
func (s *Service) Deny(id int64, manager *user.User) (*Reimbursement, error) {
	return s.setStatus(id, manager, StatusDenied)
}

func (s *Service) setStatus(id int64, manager *user.User, status string) (*Reimbursement, error) {
	if err := s.policy.RequireManager(manager); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("reimbursement not found for status change", "error", err, "reimbursement_id", id)
		return nil, internal.ErrReimbursementNotFound
	}

	if err := s.repo.UpdateStatus(id, status); err != nil {
		s.logger.Error("failed to update reimbursement status", "error", err, "reimbursement_id", id)
		return nil, err
	}
	r.Status = status

	s.logger.Info("reimbursement status changed",
		"reimbursement_id", id,
		"manager_id", manager.ID,
		"status", status)

	owner, err := s.users.GetByID(r.UserID)
	if err != nil {
		s.logger.Warn("owner lookup failed after status change", "error", err, "user_id", r.UserID)
		return r, nil
	}

	if owner.Notify {
		if status == StatusApproved {
			s.notify(owner.Email,
				"Reimbursement request approved",
				fmt.Sprintf("Your reimbursement request has been approved.\nDetails:\nID: %d\nDescription: %s\nAmount: $%s",
					r.ID, r.Description, r.Amount.StringFixed(2)))
		} else {
			s.notify(owner.Email,
				"Reimbursement request denied",
				fmt.Sprintf("Your reimbursement request has been denied.\nDetails:\nID: %d\nDescription: %s\nAmount: $%s",
					r.ID, r.Description, r.Amount.StringFixed(2)))
		}
	}

	return r, nil
}

// Reassign transfers ownership without touching the status. The previous
// and the new owner are notified independently, each only if subscribed.
func (s *Service) Reassign(id int64, manager *user.User, newOwnerID int64) (*Reimbursement, error) {
	if err := s.policy.RequireManager(manager); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("reimbursement not found for reassignment", "error", err, "reimbursement_id", id)
		return nil, internal.ErrReimbursementNotFound
	}

	newOwner, err := s.users.GetByID(newOwnerID)
	if err != nil {
		s.logger.Error("new owner not found for reassignment", "error", err, "user_id", newOwnerID)
		return nil, internal.ErrUserNotFound
	}

	prevOwner, err := s.users.GetByID(r.UserID)
	if err != nil {
		s.logger.Warn("previous owner lookup failed", "error", err, "user_id", r.UserID)
		prevOwner = nil
	}

	if err := s.repo.UpdateOwner(id, newOwner.ID); err != nil {
		s.logger.Error("failed to reassign reimbursement", "error", err, "reimbursement_id", id)
		return nil, err
	}
	r.UserID = newOwner.ID

	s.logger.Info("reimbursement reassigned",
		"reimbursement_id", id,
		"manager_id", manager.ID,
		"new_owner_id", newOwner.ID)

	details := fmt.Sprintf("\nDetails:\nID: %d\nDescription: %s\nAmount: $%s",
		r.ID, r.Description, r.Amount.StringFixed(2))

	if prevOwner != nil && prevOwner.Notify {
		s.notify(prevOwner.Email,
			"Reimbursement request reassigned",
			fmt.Sprintf("Your reimbursement request has been reassigned to %s%s", newOwner.Name, details))
	}
	if newOwner.Notify {
		s.notify(newOwner.Email,
			"New reimbursement request reassigned to you",
			"A new reimbursement request has been reassigned to you."+details)
	}

	return r, nil
}

// notify publishes a rendered email as a post-commit event. Handler
// failures are contained by the mailer; the store mutation is already
// durable when this runs.
func (s *Service) notify(recipient, subject, body string) {
	ev := events.NewNotificationRequestedEvent(recipient, subject, body)
	if err := s.publisher.PublishSync(context.Background(), ev); err != nil {
		s.logger.Error("notification dispatch failed",
			"recipient", recipient,
			"subject", subject,
			"error", err)
	}
}
