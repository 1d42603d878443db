package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/".
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Controller handles the login, logout and registration endpoints.
type Controller struct {
	service  *Service
	sessions *SessionManager
}

func NewController(service *Service, sessions *SessionManager) *Controller {
	return &Controller{service: service, sessions: sessions}
}

// RegisterRoutes attaches the auth endpoints to the router.
func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", ctrl.LoginPage)
	router.POST("/login", ctrl.Login)
	router.GET("/register", ctrl.RegisterPage)
	router.POST("/register", ctrl.Register)
	router.POST("/logout", ctrl.Logout)
}

func (ctrl *Controller) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", gin.H{
		"CSRFToken": CSRFToken(c),
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"Error":     c.Query("error"),
	})
}

func (ctrl *Controller) Login(c *gin.Context) {
	login := strings.TrimSpace(c.PostForm("login"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))

	user, err := ctrl.service.Authenticate(login, password)
	if err != nil {
		message := "Invalid username or password."
		if errors.Is(err, ErrAccountLocked) {
			message = "Account temporarily locked. Try again later."
		}
		c.HTML(http.StatusUnauthorized, "login", gin.H{
			"CSRFToken": CSRFToken(c),
			"Next":      next,
			"Error":     message,
			"Login":     login,
		})
		return
	}

	if err := ctrl.sessions.CreateSession(c.Request, user); err != nil {
		c.String(http.StatusInternalServerError, "Failed to create session")
		return
	}
	c.Redirect(http.StatusFound, next)
}

func (ctrl *Controller) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register", gin.H{
		"CSRFToken": CSRFToken(c),
	})
}

func (ctrl *Controller) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := ctrl.service.Register(email, username, password)
	if err != nil {
		c.HTML(http.StatusBadRequest, "register", gin.H{
			"CSRFToken": CSRFToken(c),
			"Error":     registrationError(err),
			"Email":     email,
			"Username":  username,
		})
		return
	}

	if err := ctrl.sessions.CreateSession(c.Request, user); err != nil {
		c.String(http.StatusInternalServerError, "Failed to create session")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (ctrl *Controller) Logout(c *gin.Context) {
	_ = ctrl.sessions.DestroySession(c.Request)
	c.Redirect(http.StatusFound, "/")
}

func registrationError(err error) string {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return "Email already registered."
	case errors.Is(err, ErrUsernameTaken):
		return "Username already in use."
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 8 characters."
	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrUsernameRequired),
		errors.Is(err, ErrPasswordRequired):
		return "All fields are required."
	default:
		return "Registration failed."
	}
}
