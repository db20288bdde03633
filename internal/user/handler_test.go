package user

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jamlabs/reimbursement-service/internal"
)

// Stub authenticator keyed on (id, api key)
type stubAuthenticator struct {
	repo *mockUserRepository
}

func (s *stubAuthenticator) Authenticate(userID int64, presentedKey string) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	if presentedKey != u.APIKey && presentedKey != "Basic "+u.APIKey {
		return nil, internal.ErrInvalidAPIKey
	}
	return u, nil
}

var _ = Describe("UserHandler", func() {
	var (
		repo    *mockUserRepository
		service *Service
		router  *chi.Mux
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, logger)

		handler := NewHandler(service, &stubAuthenticator{repo: repo})
		router = chi.NewRouter()
		router.Post("/api/user", handler.CreateUser)
		router.Get("/api/user", handler.GetAllUsers)
		router.Patch("/api/user/{id}", handler.SetNotify)
	})

	Describe("POST /api/user", func() {
		It("should create the user and surface the key once", func() {
			payload := map[string]string{
				"name":     "Alice",
				"password": "hunter22",
				"email":    "alice@mail.com",
				"role":     "EMPLOYEE",
			}
			body, _ := json.Marshal(payload)

			req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewReader(body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var view CreatedUserView
			Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
			Expect(view.APIKey).To(HaveLen(64))
			Expect(view.Notify).To(BeTrue())
			Expect(w.Header().Get("Authorization")).To(Equal("Basic " + view.APIKey))
		})

		It("should reject an invalid payload", func() {
			body, _ := json.Marshal(map[string]string{"name": "Alice"})

			req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewReader(body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(repo.users).To(BeEmpty())
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewReader([]byte("{oops")))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/user", func() {
		It("should list users without exposing credentials", func() {
			_, err := service.CreateUser(CreateUserDTO{Name: "Alice", Password: "p", Email: "alice@mail.com", Role: "EMPLOYEE"})
			Expect(err).ToNot(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var raw []map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&raw)).To(Succeed())
			Expect(raw).To(HaveLen(1))
			Expect(raw[0]).ToNot(HaveKey("api_key"))
			Expect(raw[0]).ToNot(HaveKey("password_hash"))
		})
	})

	Describe("PATCH /api/user/{id}", func() {
		var employee, manager *User

		BeforeEach(func() {
			var err error
			employee, err = service.CreateUser(CreateUserDTO{Name: "Emp", Password: "p", Email: "emp@mail.com", Role: "EMPLOYEE"})
			Expect(err).ToNot(HaveOccurred())
			manager, err = service.CreateUser(CreateUserDTO{Name: "Mgr", Password: "p", Email: "mgr@mail.com", Role: "MANAGER"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should let a user unsubscribe themself", func() {
			req := httptest.NewRequest(http.MethodPatch, "/api/user/1?notify=false", nil)
			req.Header.Set("Authorization", "Basic "+employee.APIKey)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(repo.users[employee.ID].Notify).To(BeFalse())
		})

		It("should let a manager act on another user via actor_id", func() {
			req := httptest.NewRequest(http.MethodPatch, "/api/user/1?notify=false&actor_id=2", nil)
			req.Header.Set("Authorization", "Basic "+manager.APIKey)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(repo.users[employee.ID].Notify).To(BeFalse())
		})

		It("should reject a wrong credential", func() {
			req := httptest.NewRequest(http.MethodPatch, "/api/user/1?notify=false", nil)
			req.Header.Set("Authorization", "Basic wrong")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(repo.users[employee.ID].Notify).To(BeTrue())
		})

		It("should reject a missing notify parameter", func() {
			req := httptest.NewRequest(http.MethodPatch, "/api/user/1", nil)
			req.Header.Set("Authorization", "Basic "+employee.APIKey)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
