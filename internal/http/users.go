package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/catalog"
)

// UserController serves the public profile pages.
type UserController struct {
	store *catalog.Repository
}

func NewUserController(store *catalog.Repository) *UserController {
	return &UserController{store: store}
}

// ProfilePage renders a user's profile and shelf. Usernames are matched
// case-sensitively; a near-miss in casing is a 404.
func (ctrl *UserController) ProfilePage(c *gin.Context) {
	username := c.Param("username")

	user, err := ctrl.store.GetUser(username)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}

	shelf, err := ctrl.store.ListShelvedBooks(user.ID)
	if err != nil {
		renderInternalError(c, err)
		return
	}

	ctx := baseContext(c)
	ctx["Profile"] = user
	ctx["Shelf"] = shelf
	c.HTML(http.StatusOK, "user", ctx)
}
