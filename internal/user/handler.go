package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/jamlabs/reimbursement-service/internal/transport"
	"github.com/jamlabs/reimbursement-service/pkg/logger"
)

type ServiceAPI interface {
	CreateUser(dto CreateUserDTO) (*User, error)
	ListAll() ([]*User, error)
	SetNotify(targetID int64, enabled bool, actor *User) (*User, error)
}

// Authenticator resolves the calling user from an (id, credential) pair.
type Authenticator interface {
	Authenticate(userID int64, presentedKey string) (*User, error)
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

// CreateUser handles POST /api/user. The issued API key is echoed in the
// Authorization response header and in the body; neither is ever
// retrievable again.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.CreateUser(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Authorization", "Basic "+u.APIKey)
	h.WriteJSON(w, http.StatusCreated, ToCreatedView(u))
}

// GetAllUsers handles GET /api/user.
func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// SetNotify handles PATCH /api/user/{id}?notify=bool. The caller
// authenticates as themself; an actor_id query parameter lets a manager
// act on another user's subscription.
func (h *Handler) SetNotify(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	notify, err := strconv.ParseBool(r.URL.Query().Get("notify"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "notify must be true or false")
		return
	}

	actorID := targetID
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		actorID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid actor_id")
			return
		}
	}

	actor, err := h.Auth.Authenticate(actorID, h.ExtractAPIKeyFromHeader(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.SetNotify(targetID, notify, actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("notify flag updated", "user_id", targetID, "notify", notify)
	h.WriteJSON(w, http.StatusOK, u)
}
