package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/pkg/logger"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ClientCookie carries the browser client identity
	ClientCookie = "contractsdash_client"
	// ClientHeader lets non-browser clients name themselves
	ClientHeader = "X-Client-ID"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

// ClientIdentity resolves which browser client a request belongs to. A valid
// bearer token wins, then the X-Client-ID header, then the client cookie.
// Requests with none of these are assigned a fresh ID in a cookie.
func ClientIdentity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var clientID string

		if token := bearerToken(c); token != "" {
			if claims, err := session.ParseToken(token, secret); err == nil && claims.ClientID != "" {
				clientID = claims.ClientID
				c.Set("bearer_token", token)
			}
		}
		if clientID == "" {
			clientID = strings.TrimSpace(c.GetHeader(ClientHeader))
		}
		if clientID == "" {
			if cookie, err := c.Cookie(ClientCookie); err == nil {
				clientID = cookie
			}
		}
		if clientID == "" {
			clientID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, clientID, clientCookieMaxAge, "/", "", false, true)
		}

		c.Header(ClientHeader, clientID)
		c.Set("client_id", clientID)

		ctx := context.WithValue(c.Request.Context(), logger.ClientIDKey, clientID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireSession gates protected routes on the client's session state. A
// client whose session is still being restored is given up to wait before
// being told to retry.
func RequireSession(registry *session.Registry, wait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := registry.Session(GetClientID(c))
		waitReady(c.Request.Context(), m, wait)

		switch session.Gate(m.State()) {
		case session.DecisionLoading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"status": "checking_authentication",
			})
			return
		case session.DecisionRedirect:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Authentication required",
				"redirect": session.EntryPath,
				"from":     c.Request.URL.RequestURI(),
			})
			return
		}

		// A token from an earlier session of this client no longer counts
		if token := GetBearerToken(c); token != "" && !m.MatchesToken(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Invalid or expired token",
				"redirect": session.EntryPath,
				"from":     c.Request.URL.RequestURI(),
			})
			return
		}

		username := ""
		if u := m.CurrentUser(); u != nil {
			username = u.Username
		}
		c.Set("session", m)
		c.Set("username", username)

		ctx := context.WithValue(c.Request.Context(), logger.UsernameKey, username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func waitReady(ctx context.Context, m *session.Manager, wait time.Duration) {
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-m.Ready():
	case <-timer.C:
	case <-ctx.Done():
	}
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetClientID gets the client ID from context
func GetClientID(c *gin.Context) string {
	if clientID, exists := c.Get("client_id"); exists {
		return clientID.(string)
	}
	return ""
}

// GetBearerToken returns the validated bearer token, if any
func GetBearerToken(c *gin.Context) string {
	if token, exists := c.Get("bearer_token"); exists {
		return token.(string)
	}
	return ""
}

// GetSession gets the session set by RequireSession
func GetSession(c *gin.Context) *session.Manager {
	if m, exists := c.Get("session"); exists {
		return m.(*session.Manager)
	}
	return nil
}

// GetUsername gets the username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		return username.(string)
	}
	return ""
}
