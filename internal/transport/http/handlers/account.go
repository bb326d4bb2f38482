package http_handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

type AccountHandler struct {
	svc *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Register handles POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("email", u.Email).
		Msg("user_registered")

	response.OK(w, r, dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("email", u.Email).
		Msg("user_logged_in")

	response.OK(w, r, dto.MessageResponse{Message: "Login successful"})
}

// LinkID handles POST /link_id
func (h *AccountHandler) LinkID(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkIDRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.LinkExternalID(r.Context(), req.UserEmail, req.ExternalID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, r, dto.MessageResponse{
		Message: fmt.Sprintf("External ID %s linked to user %s", req.ExternalID, req.UserEmail),
	})
}

// UserWithPosts handles GET /user_with_posts/{user_email}
func (h *AccountHandler) UserWithPosts(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.GetUserWithPosts(r.Context(), email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, r, dto.NewUserWithPostsResponse(res))
}

// DeleteUser handles DELETE /delete_user/{user_email}
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.DeleteUser(r.Context(), email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("email", email).
		Int64("posts_deleted", res.PostsDeleted).
		Msg("user_deleted")

	response.OK(w, r, dto.MessageResponse{
		Message: fmt.Sprintf("User %s and associated data deleted", email),
	})
}

// emailParam reads {user_email}; chi routes on the escaped path, so %40 must be decoded.
// The value is used as given: lookups are exact, whitespace included.
func emailParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "user_email")
	email, err := url.PathUnescape(raw)
	if err != nil {
		return "", domain.ErrInvalidField("user_email", "bad_escape")
	}
	if email == "" {
		return "", domain.ErrMissingField("user_email")
	}
	return email, nil
}
