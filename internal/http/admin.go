package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/entities"
	"github.com/openshelf/elibrary/internal/forms"
)

// AdminController serves the permission-gated book and user management
// endpoints. Route-level guards enforce the permission bits; the controller
// only deals with validated input.
type AdminController struct {
	store *catalog.Repository
}

func NewAdminController(store *catalog.Repository) *AdminController {
	return &AdminController{store: store}
}

// NewBookPage renders an empty book form.
func (ctrl *AdminController) NewBookPage(c *gin.Context) {
	ctx := baseContext(c)
	ctx["Form"] = &forms.BookForm{}
	ctx["Errors"] = forms.Errors{}
	ctx["Action"] = "/admin/book/new"
	c.HTML(http.StatusOK, "book_form", ctx)
}

// CreateBook validates the form and creates the book with its author set
// and publication year resolved in a single transaction.
func (ctrl *AdminController) CreateBook(c *gin.Context) {
	ctrl.saveBook(c, 0, "/admin/book/new")
}

// EditBookPage renders the form pre-filled from an existing book.
func (ctrl *AdminController) EditBookPage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	book, err := ctrl.store.GetBook(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}

	year := 0
	if book.Year != nil {
		year = book.Year.Year
	}
	ctx := baseContext(c)
	ctx["Form"] = &forms.BookForm{
		Name:        book.Name,
		Description: book.Description,
		Author:      book.AuthorList(),
		Year:        year,
		ImgURL:      book.ImgURL,
	}
	ctx["Errors"] = forms.Errors{}
	ctx["Action"] = fmt.Sprintf("/admin/book/%d/edit", book.ID)
	c.HTML(http.StatusOK, "book_form", ctx)
}

// UpdateBook replaces the book's fields and author set with the submitted
// values. Authors removed from the list are detached, not deleted.
func (ctrl *AdminController) UpdateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	ctrl.saveBook(c, id, fmt.Sprintf("/admin/book/%d/edit", id))
}

func (ctrl *AdminController) saveBook(c *gin.Context, id uint, action string) {
	form := bindBookForm(c)

	if errs := form.Validate(); errs.Any() {
		ctx := baseContext(c)
		ctx["Form"] = form
		ctx["Errors"] = errs
		ctx["Action"] = action
		c.HTML(http.StatusBadRequest, "book_form", ctx)
		return
	}

	book, err := ctrl.store.UpsertBook(form.Fields(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/book/%d", book.ID))
}

// DeleteBook removes the book and detaches it from every author and shelf.
func (ctrl *AdminController) DeleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	if err := ctrl.store.DeleteBook(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// EditProfilePage renders the administrator's user edit form.
func (ctrl *AdminController) EditProfilePage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	user, err := ctrl.store.GetUserByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}

	ctrl.renderProfileForm(c, http.StatusOK, user, &forms.ProfileAdminForm{
		Email:     user.Email,
		Username:  user.Username,
		Confirmed: user.Confirmed,
		RoleID:    user.RoleID,
	}, forms.Errors{})
}

// UpdateProfile applies the administrator's changes to a user's email,
// username, confirmation flag and role.
func (ctrl *AdminController) UpdateProfile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	user, err := ctrl.store.GetUserByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}

	form := bindProfileForm(c)
	errs, err := form.Validate(user, ctrl.store)
	if err != nil {
		renderInternalError(c, err)
		return
	}
	if errs.Any() {
		ctrl.renderProfileForm(c, http.StatusBadRequest, user, form, errs)
		return
	}

	updated, err := ctrl.store.UpdateUserProfile(user.ID, form.Fields())
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/user/"+updated.Username)
}

func (ctrl *AdminController) renderProfileForm(c *gin.Context, status int, user *entities.User, form *forms.ProfileAdminForm, errs forms.Errors) {
	roles, err := ctrl.store.ListRoles()
	if err != nil {
		renderInternalError(c, err)
		return
	}
	ctx := baseContext(c)
	ctx["Profile"] = user
	ctx["Form"] = form
	ctx["Errors"] = errs
	ctx["Roles"] = roles
	ctx["Action"] = fmt.Sprintf("/admin/user/%d/edit", user.ID)
	c.HTML(status, "profile_form", ctx)
}

func bindBookForm(c *gin.Context) *forms.BookForm {
	year, _ := strconv.Atoi(strings.TrimSpace(c.PostForm("year")))
	return &forms.BookForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Author:      strings.TrimSpace(c.PostForm("author")),
		Year:        year,
		ImgURL:      strings.TrimSpace(c.PostForm("img_url")),
	}
}

func bindProfileForm(c *gin.Context) *forms.ProfileAdminForm {
	roleID, _ := strconv.ParseUint(c.PostForm("role_id"), 10, 32)
	return &forms.ProfileAdminForm{
		Email:     strings.TrimSpace(c.PostForm("email")),
		Username:  strings.TrimSpace(c.PostForm("username")),
		Confirmed: c.PostForm("confirmed") == "on" || c.PostForm("confirmed") == "true",
		RoleID:    uint(roleID),
	}
}
