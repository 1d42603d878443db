package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/auth"
	"github.com/openshelf/elibrary/internal/catalog"
	"github.com/openshelf/elibrary/internal/search"
)

// CatalogController serves the public catalog pages and the shelf toggles.
type CatalogController struct {
	store    *catalog.Repository
	searcher *search.Aggregator
}

func NewCatalogController(store *catalog.Repository, searcher *search.Aggregator) *CatalogController {
	return &CatalogController{store: store, searcher: searcher}
}

// BooksPage renders one page of the catalog. An out-of-range page is a 404
// when the paginate-error-out policy is enabled (the default).
func (ctrl *CatalogController) BooksPage(c *gin.Context) {
	page := pageParam(c)
	perPage := ctrl.store.PerPage()
	offset := (page - 1) * perPage

	books, total, err := ctrl.store.ListBooks(offset, perPage)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}

	ctx := baseContext(c)
	ctx["Books"] = books
	ctx["Total"] = total
	ctx["Page"] = page
	ctx["HasPrev"] = page > 1
	ctx["HasNext"] = int64(offset+len(books)) < total
	c.HTML(http.StatusOK, "index", ctx)
}

// BookPage renders a single book with its authors, year and shelf state.
func (ctrl *CatalogController) BookPage(c *gin.Context) {
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

	ctx := baseContext(c)
	ctx["Book"] = book
	if user := auth.CurrentUser(c); user != nil {
		shelved, err := ctrl.store.IsShelved(user.ID, book.ID)
		if err != nil {
			renderInternalError(c, err)
			return
		}
		ctx["Shelved"] = shelved
	}
	c.HTML(http.StatusOK, "book", ctx)
}

// SearchPage runs the search aggregator. An empty query renders an empty
// result list, not an error.
func (ctrl *CatalogController) SearchPage(c *gin.Context) {
	query := c.Query("q")

	books, err := ctrl.searcher.Search(query)
	if err != nil {
		renderInternalError(c, err)
		return
	}

	ctx := baseContext(c)
	ctx["Books"] = books
	ctx["Query"] = query
	c.HTML(http.StatusOK, "search", ctx)
}

// Shelve adds the book to the current user's shelf; re-adding is a no-op.
func (ctrl *CatalogController) Shelve(c *gin.Context) {
	ctrl.toggleShelf(c, ctrl.store.ShelveBook)
}

// Unshelve removes the book from the current user's shelf; removing an
// absent book is a no-op.
func (ctrl *CatalogController) Unshelve(c *gin.Context) {
	ctrl.toggleShelf(c, ctrl.store.UnshelveBook)
}

func (ctrl *CatalogController) toggleShelf(c *gin.Context, op func(userID, bookID uint) error) {
	user := auth.CurrentUser(c)
	if user == nil {
		// Guarded by RequireAuthenticated; belt and braces.
		c.Redirect(http.StatusFound, "/login")
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		renderNotFound(c)
		return
	}
	if err := op(user.ID, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderNotFound(c)
			return
		}
		renderInternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/book/"+c.Param("id"))
}
