package reimbursement

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/jamlabs/reimbursement-service/internal/transport"
	"github.com/jamlabs/reimbursement-service/internal/user"
	"github.com/jamlabs/reimbursement-service/pkg/logger"
)

type ServiceAPI interface {
	ListOwn(owner *user.User) ([]*Reimbursement, error)
	ListAll(caller *user.User) ([]*Reimbursement, error)
	Submit(owner *user.User, dto SubmitDTO) (*Reimbursement, error)
	Approve(id int64, manager *user.User) (*Reimbursement, error)
	Deny(id int64, manager *user.User) (*Reimbursement, error)
	Reassign(id int64, manager *user.User, newOwnerID int64) (*Reimbursement, error)
}

// Authenticator resolves the calling user from an (id, credential) pair.
type Authenticator interface {
	Authenticate(userID int64, presentedKey string) (*user.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Auth    Authenticator
}

func NewHandler(svc ServiceAPI, authn Authenticator) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Auth:        authn,
	}
}

// GetOwnReimbursements handles GET /api/reimbursement/{id}. The path id
// names the acting user, who sees only their own records.
func (h *Handler) GetOwnReimbursements(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticatePathUser(w, r)
	if !ok {
		return
	}

	records, err := h.Service.ListOwn(caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

// SubmitReimbursement handles POST /api/reimbursement/{id}.
func (h *Handler) SubmitReimbursement(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticatePathUser(w, r)
	if !ok {
		return
	}

	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Submit(caller, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

// ChangeStatus handles PUT /api/reimbursement/{id}. The path id names
// the reimbursement; the acting manager authenticates via managerid in
// the body plus the Authorization header.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	reimbursementID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid reimbursement id")
		return
	}

	var dto StatusChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	manager, err := h.Auth.Authenticate(dto.ManagerID, h.ExtractAPIKeyFromHeader(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	switch dto.Status {
	case ActionApprove:
		_, err = h.Service.Approve(reimbursementID, manager)
	case ActionDeny:
		_, err = h.Service.Deny(reimbursementID, manager)
	case ActionReassign:
		_, err = h.Service.Reassign(reimbursementID, manager, dto.UserID)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAllReimbursements handles GET /api/reimbursement/all/{id}. The path
// id names the acting manager.
func (h *Handler) GetAllReimbursements(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticatePathUser(w, r)
	if !ok {
		return
	}

	records, err := h.Service.ListAll(caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) authenticatePathUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}

	caller, err := h.Auth.Authenticate(userID, h.ExtractAPIKeyFromHeader(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, false
	}

	return caller, true
}
