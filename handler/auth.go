package handler

import (
	"net/http"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/middleware"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/pkg/logger"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/session"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	registry *session.Registry
}

func NewAuthHandler(registry *session.Registry) *AuthHandler {
	return &AuthHandler{registry: registry}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string      `json:"token"`
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

type StatusResponse struct {
	State        string      `json:"state"`
	PendingLogin bool        `json:"pending_login"`
	User         *model.User `json:"user,omitempty"`
}

// Login handles the login form submission
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter both username and password."})
		return
	}

	ctx := c.Request.Context()
	m := h.registry.Session(middleware.GetClientID(c))
	m.Restore(ctx)

	// Visiting the entry view while signed in goes straight to the dashboard
	if m.IsAuthenticated() {
		c.JSON(http.StatusOK, LoginResponse{
			Token:    m.Token(),
			User:     m.CurrentUser(),
			Redirect: session.HomePath,
		})
		return
	}

	if !m.Login(ctx, req.Username, req.Password) {
		logger.Warn(ctx, "login failed", "username", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    m.Token(),
		User:     m.CurrentUser(),
		Redirect: session.HomePath,
	})
}

// Logout ends the client's session
func (h *AuthHandler) Logout(c *gin.Context) {
	m := h.registry.Session(middleware.GetClientID(c))
	m.Logout(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"redirect": session.EntryPath})
}

// Status reports the client's session state without gating
func (h *AuthHandler) Status(c *gin.Context) {
	m := h.registry.Session(middleware.GetClientID(c))

	c.JSON(http.StatusOK, StatusResponse{
		State:        m.State().String(),
		PendingLogin: m.Pending(),
		User:         m.CurrentUser(),
	})
}

// GetCurrentUser returns the current user info
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	m := middleware.GetSession(c)
	if m == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, m.CurrentUser())
}
