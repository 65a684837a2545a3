package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/accounts/internal/services"
	"github.com/jjudge-oj/accounts/types"
)

const (
	defaultPage  = 1
	defaultCount = 10
)

// UserHandler provides HTTP handlers for user accounts.
type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewUserHandler constructs a handler backed by the given service.
func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, logger *slog.Logger) {
	handler := NewUserHandler(userService, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(userService, handler.logger))

		r.Get("/me", handler.Me)
		r.Patch("/me", handler.UpdateMe)
		r.Get("/", handler.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetUser)
			r.Patch("/", handler.UpdateUser)
			r.Delete("/", handler.DeleteUser)
		})
	})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var patch types.UserPatch
	if err := decodePatch(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update")
		return
	}

	if err := h.userService.UpdateSelf(r.Context(), user, patch); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "user updated"})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, count, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.userService.List(r.Context(), page, count)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch types.UserPatch
	if err := decodePatch(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update")
		return
	}

	if err := h.userService.UpdateByID(r.Context(), chi.URLParam(r, "userID"), patch); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "user updated"})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteByID(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "user deleted"})
}

func parsePagination(r *http.Request) (page, count int, err error) {
	page = defaultPage
	count = defaultCount

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 {
			return 0, 0, errors.New("invalid count")
		}
	}

	return page, count, nil
}
