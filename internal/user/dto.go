package user

import (
	"strings"

	"github.com/jamlabs/reimbursement-service/internal"
)

// CreateUserDTO is the transport shape for user creation.
type CreateUserDTO struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	if d.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "email is malformed", internal.ErrCodeInvalidEmail)
	}
	if !Role(d.Role).Valid() {
		return internal.NewValidationFieldError("role", "role must be EMPLOYEE or MANAGER", internal.ErrCodeInvalidRole)
	}
	return nil
}

// CreatedUserView is returned from user creation. It is the only place
// the issued API key ever appears; there is no retrieval endpoint.
type CreatedUserView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Notify    bool   `json:"notify"`
	APIKey    string `json:"api_key"`
	CreatedAt string `json:"created_at"`
}

func ToCreatedView(u *User) CreatedUserView {
	return CreatedUserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Notify:    u.Notify,
		APIKey:    u.APIKey,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
