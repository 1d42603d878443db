package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/elibrary/internal/auth"
)

// pageParam parses the ?page= query parameter, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404", baseContext(c))
	c.Abort()
}

// renderInternalError logs the underlying error and shows a generic page;
// storage-layer failures are never exposed verbatim.
func renderInternalError(c *gin.Context, err error) {
	log.Printf("Internal error handling %s: %v", c.Request.URL.Path, err)
	c.HTML(http.StatusInternalServerError, "500", baseContext(c))
	c.Abort()
}

// baseContext is the template payload every page shares.
func baseContext(c *gin.Context) gin.H {
	return gin.H{
		"User":      auth.CurrentUser(c),
		"CSRFToken": auth.CSRFToken(c),
	}
}
