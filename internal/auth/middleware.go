package auth

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/entities"
)

// ContextKeyUser is the Gin context key holding the resolved *entities.User.
const ContextKeyUser = "auth_user"

// Middleware resolves the current user from the session on every request and
// provides the permission guards used at the route boundary.
type Middleware struct {
	store    *catalog.Repository
	sessions *SessionManager
}

func NewMiddleware(store *catalog.Repository, sessions *SessionManager) *Middleware {
	return &Middleware{store: store, sessions: sessions}
}

// CurrentUser loads the session's user (role included) into the context and
// refreshes their last-seen timestamp. Anonymous requests pass through with
// no user set.
func (m *Middleware) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sessions.GetUserID(c.Request)
		if userID != 0 {
			user, err := m.store.GetUserByID(userID)
			if err == nil {
				c.Set(ContextKeyUser, user)
				_ = m.store.TouchLastSeen(user.ID)
			} else if !errors.Is(err, catalog.ErrNotFound) {
				c.String(http.StatusInternalServerError, "Internal error")
				c.Abort()
				return
			}
			// A stale session pointing at a deleted user is treated as
			// anonymous.
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the Gin context, or nil
// for anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil
	}
	user, _ := v.(*entities.User)
	return user
}

// RequireAuthenticated redirects anonymous requests to the login page.
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequirePermission gates a route on a permission bit. Anonymous callers are
// sent to login; authenticated callers without the bit get a 403.
func (m *Middleware) RequirePermission(p entities.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			redirectToLogin(c)
			return
		}
		if !user.Can(p) {
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
	c.Abort()
}
