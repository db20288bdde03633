package reimbursement

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/jamlabs/reimbursement-service/internal"
	"github.com/jamlabs/reimbursement-service/internal/user"
)

// Stub service capturing handler dispatch
type stubWorkflow struct {
	listOwnCalls  []*user.User
	listAllCalls  []*user.User
	submitted     []SubmitDTO
	approved      []int64
	denied        []int64
	reassigned    [][2]int64
	returnRecord  *Reimbursement
	returnRecords []*Reimbursement
	returnError   error
}

func (s *stubWorkflow) ListOwn(owner *user.User) ([]*Reimbursement, error) {
	s.listOwnCalls = append(s.listOwnCalls, owner)
	return s.returnRecords, s.returnError
}

func (s *stubWorkflow) ListAll(caller *user.User) ([]*Reimbursement, error) {
	s.listAllCalls = append(s.listAllCalls, caller)
	return s.returnRecords, s.returnError
}

func (s *stubWorkflow) Submit(owner *user.User, dto SubmitDTO) (*Reimbursement, error) {
	s.submitted = append(s.submitted, dto)
	return s.returnRecord, s.returnError
}

func (s *stubWorkflow) Approve(id int64, manager *user.User) (*Reimbursement, error) {
	s.approved = append(s.approved, id)
	return s.returnRecord, s.returnError
}

func (s *stubWorkflow) Deny(id int64, manager *user.User) (*Reimbursement, error) {
	s.denied = append(s.denied, id)
	return s.returnRecord, s.returnError
}

func (s *stubWorkflow) Reassign(id int64, manager *user.User, newOwnerID int64) (*Reimbursement, error) {
	s.reassigned = append(s.reassigned, [2]int64{id, newOwnerID})
	return s.returnRecord, s.returnError
}

// Stub authenticator keyed on (id, api key)
type stubAuthenticator struct {
	users map[int64]*user.User
}

func (s *stubAuthenticator) Authenticate(userID int64, presentedKey string) (*user.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	if presentedKey == "" {
		return nil, internal.ErrMissingAPIKey
	}
	if presentedKey != u.APIKey && presentedKey != "Basic "+u.APIKey {
		return nil, internal.ErrInvalidAPIKey
	}
	return u, nil
}

var _ = Describe("ReimbursementHandler", func() {
	var (
		workflow *stubWorkflow
		authn    *stubAuthenticator
		router   *chi.Mux

		employee *user.User
		manager  *user.User
	)

	BeforeEach(func() {
		workflow = &stubWorkflow{
			returnRecord: &Reimbursement{
				ID:          7,
				RequestDate: time.Now().AddDate(0, 0, -1),
				Description: "Hotel",
				Amount:      decimal.NewFromInt(200),
				Status:      StatusPending,
				UserID:      1,
			},
		}

		employee = &user.User{ID: 1, Role: user.RoleEmployee, APIKey: "empkey"}
		manager = &user.User{ID: 3, Role: user.RoleManager, APIKey: "mgrkey"}
		authn = &stubAuthenticator{users: map[int64]*user.User{
			employee.ID: employee,
			manager.ID:  manager,
		}}

		handler := NewHandler(workflow, authn)
		router = chi.NewRouter()
		router.Get("/api/reimbursement/all/{id}", handler.GetAllReimbursements)
		router.Get("/api/reimbursement/{id}", handler.GetOwnReimbursements)
		router.Post("/api/reimbursement/{id}", handler.SubmitReimbursement)
		router.Put("/api/reimbursement/{id}", handler.ChangeStatus)
	})

	Describe("GET /api/reimbursement/{id}", func() {
		It("should list the authenticated user's records", func() {
			workflow.returnRecords = []*Reimbursement{workflow.returnRecord}

			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/1", nil)
			req.Header.Set("Authorization", "Basic empkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(workflow.listOwnCalls).To(HaveLen(1))
			Expect(workflow.listOwnCalls[0].ID).To(Equal(employee.ID))
		})

		It("should reject a missing credential", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/1", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(workflow.listOwnCalls).To(BeEmpty())
		})

		It("should reject a wrong credential", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/1", nil)
			req.Header.Set("Authorization", "Basic wrong")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject a non-numeric user id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/abc", nil)
			req.Header.Set("Authorization", "Basic empkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/reimbursement/{id}", func() {
		It("should submit for the authenticated user and return 201", func() {
			payload := map[string]interface{}{
				"request_date": time.Now().AddDate(0, 0, -1).Format(time.RFC3339),
				"description":  "Hotel",
				"amount":       "200",
			}
			body, _ := json.Marshal(payload)

			req := httptest.NewRequest(http.MethodPost, "/api/reimbursement/1", bytes.NewReader(body))
			req.Header.Set("Authorization", "Basic empkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(workflow.submitted).To(HaveLen(1))
			Expect(workflow.submitted[0].Description).To(Equal("Hotel"))
		})

		It("should reject a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/reimbursement/1", bytes.NewReader([]byte("{not json")))
			req.Header.Set("Authorization", "Basic empkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(workflow.submitted).To(BeEmpty())
		})
	})

	Describe("PUT /api/reimbursement/{id}", func() {
		putStatus := func(body map[string]interface{}, key string) *httptest.ResponseRecorder {
			raw, _ := json.Marshal(body)
			req := httptest.NewRequest(http.MethodPut, "/api/reimbursement/7", bytes.NewReader(raw))
			if key != "" {
				req.Header.Set("Authorization", "Basic "+key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("should approve and return 204", func() {
			w := putStatus(map[string]interface{}{"status": "approve", "managerid": 3}, "mgrkey")

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(workflow.approved).To(Equal([]int64{7}))
		})

		It("should deny and return 204", func() {
			w := putStatus(map[string]interface{}{"status": "deny", "managerid": 3}, "mgrkey")

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(workflow.denied).To(Equal([]int64{7}))
		})

		It("should reassign with the target user id", func() {
			w := putStatus(map[string]interface{}{"status": "reassign", "managerid": 3, "userid": 2}, "mgrkey")

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(workflow.reassigned).To(Equal([][2]int64{{7, 2}}))
		})

		It("should reject an unknown action", func() {
			w := putStatus(map[string]interface{}{"status": "escalate", "managerid": 3}, "mgrkey")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a credential not matching the manager id", func() {
			w := putStatus(map[string]interface{}{"status": "approve", "managerid": 3}, "empkey")

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(workflow.approved).To(BeEmpty())
		})

		It("should surface a forbidden error from the workflow", func() {
			workflow.returnError = internal.ErrManagerRequired

			w := putStatus(map[string]interface{}{"status": "approve", "managerid": 3}, "mgrkey")

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("GET /api/reimbursement/all/{id}", func() {
		It("should list everything for an authenticated manager", func() {
			workflow.returnRecords = []*Reimbursement{workflow.returnRecord}

			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/all/3", nil)
			req.Header.Set("Authorization", "Basic mgrkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(workflow.listAllCalls).To(HaveLen(1))
			Expect(workflow.listAllCalls[0].ID).To(Equal(manager.ID))
		})

		It("should surface a forbidden error for a non-manager caller", func() {
			workflow.returnError = internal.ErrManagerRequired

			req := httptest.NewRequest(http.MethodGet, "/api/reimbursement/all/1", nil)
			req.Header.Set("Authorization", "Basic empkey")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})
