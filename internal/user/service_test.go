package user

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/jamlabs/reimbursement-service/internal"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Module Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users       map[int64]*User
	createError error
	nextID      int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(u *User) error {
	if m.createError != nil {
		return m.createError
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) GetAll() ([]*User, error) {
	all := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	return all, nil
}

func (m *mockUserRepository) UpdateNotify(id int64, notify bool) error {
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Notify = notify
	return nil
}

var _ = Describe("UserService", func() {
	var (
		service *Service
		repo    *mockUserRepository
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, logger)
	})

	Describe("CreateUser", func() {
		Context("with a valid payload", func() {
			var dto CreateUserDTO

			BeforeEach(func() {
				dto = CreateUserDTO{
					Name:     "Alice",
					Password: "hunter22",
					Email:    "alice@mail.com",
					Role:     "EMPLOYEE",
				}
			})

			It("should persist the user with notify enabled", func() {
				u, err := service.CreateUser(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(u.ID).To(BeNumerically(">", 0))
				Expect(u.Notify).To(BeTrue())
				Expect(u.Role).To(Equal(RoleEmployee))
			})

			It("should store a bcrypt hash, not the password", func() {
				u, err := service.CreateUser(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(u.PasswordHash).ToNot(Equal(dto.Password))
				Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password))).To(Succeed())
			})

			It("should issue a random API key", func() {
				first, err := service.CreateUser(dto)
				Expect(err).ToNot(HaveOccurred())

				dto.Email = "alice2@mail.com"
				second, err := service.CreateUser(dto)
				Expect(err).ToNot(HaveOccurred())

				Expect(first.APIKey).To(HaveLen(64))
				Expect(second.APIKey).To(HaveLen(64))
				Expect(first.APIKey).ToNot(Equal(second.APIKey))
			})
		})

		Context("with an invalid payload", func() {
			It("should reject a missing name", func() {
				_, err := service.CreateUser(CreateUserDTO{Password: "x", Email: "a@b.c", Role: "EMPLOYEE"})

				Expect(err).To(HaveOccurred())
				Expect(len(repo.users)).To(Equal(0))
			})

			It("should reject a malformed email", func() {
				_, err := service.CreateUser(CreateUserDTO{Name: "A", Password: "x", Email: "not-an-email", Role: "EMPLOYEE"})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidEmail))
			})

			It("should reject an unknown role", func() {
				_, err := service.CreateUser(CreateUserDTO{Name: "A", Password: "x", Email: "a@b.c", Role: "WIZARD"})

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
			})
		})
	})

	Describe("GetByID", func() {
		It("should map a missing user onto the not found error", func() {
			_, err := service.GetByID(42)

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("ListAll", func() {
		It("should return every stored user", func() {
			for _, email := range []string{"a@mail.com", "b@mail.com", "c@mail.com"} {
				_, err := service.CreateUser(CreateUserDTO{Name: "N", Password: "p", Email: email, Role: "EMPLOYEE"})
				Expect(err).ToNot(HaveOccurred())
			}

			all, err := service.ListAll()

			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(3))
		})
	})

	Describe("SetNotify", func() {
		var employee, manager, stranger *User

		BeforeEach(func() {
			var err error
			employee, err = service.CreateUser(CreateUserDTO{Name: "Emp", Password: "p", Email: "emp@mail.com", Role: "EMPLOYEE"})
			Expect(err).ToNot(HaveOccurred())
			manager, err = service.CreateUser(CreateUserDTO{Name: "Mgr", Password: "p", Email: "mgr@mail.com", Role: "MANAGER"})
			Expect(err).ToNot(HaveOccurred())
			stranger, err = service.CreateUser(CreateUserDTO{Name: "Str", Password: "p", Email: "str@mail.com", Role: "EMPLOYEE"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should let a user unsubscribe themself", func() {
			u, err := service.SetNotify(employee.ID, false, employee)

			Expect(err).ToNot(HaveOccurred())
			Expect(u.Notify).To(BeFalse())
			Expect(repo.users[employee.ID].Notify).To(BeFalse())
		})

		It("should let a manager change another user's subscription", func() {
			u, err := service.SetNotify(employee.ID, false, manager)

			Expect(err).ToNot(HaveOccurred())
			Expect(u.Notify).To(BeFalse())
		})

		It("should let a user resubscribe", func() {
			_, err := service.SetNotify(employee.ID, false, employee)
			Expect(err).ToNot(HaveOccurred())

			u, err := service.SetNotify(employee.ID, true, employee)

			Expect(err).ToNot(HaveOccurred())
			Expect(u.Notify).To(BeTrue())
		})

		It("should reject another employee changing the flag", func() {
			_, err := service.SetNotify(employee.ID, false, stranger)

			Expect(err).To(Equal(internal.ErrManagerRequired))
			Expect(repo.users[employee.ID].Notify).To(BeTrue())
		})

		It("should return not found for an absent target", func() {
			_, err := service.SetNotify(999, false, manager)

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
