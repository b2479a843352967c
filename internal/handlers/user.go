package handlers

import (
	"net/http"

	"plantstock/internal/auth"
	"plantstock/internal/contextutil"
	"plantstock/internal/users"
)

const tokenCookieName = "access_token"

// UserHandler serves login, registration, and account management.
type UserHandler struct {
	users  *users.Service
	tokens *auth.Manager
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *users.Service, tokens *auth.Manager) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and sets the session token cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, logger, err)
		return
	}

	token, err := h.tokens.Generate(auth.Identity{ID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		logger.ErrorContext(ctx, "failed to issue token", "username", user.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.InfoContext(ctx, "user logged in", "username", user.Username, "role", user.Role)
	writeMessage(w, http.StatusOK, "Login successful")
}

// Logout clears the session token cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new user. Admin only.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ident, _ := auth.IdentityFromContext(ctx)
	if ident.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required to register new users")
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if _, err := h.users.Register(ctx, req.Username, req.Password, req.Role); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

// ResetPassword replaces a user's password. Admins may reset anyone's;
// other users only their own.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "username and new password are required")
		return
	}

	ident, _ := auth.IdentityFromContext(ctx)
	if ident.Role != users.RoleAdmin && ident.Username != req.Username {
		writeError(w, http.StatusForbidden, "unauthorized to reset this password")
		return
	}

	if err := h.users.ResetPassword(ctx, req.Username, req.NewPassword); err != nil {
		writeServiceError(w, logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

// Me returns the authenticated caller's identity.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

// Manage serves the login page for unauthenticated visitors and redirects
// authenticated ones to the main menu.
func (h *UserHandler) Manage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(loginPageHTML))
}
