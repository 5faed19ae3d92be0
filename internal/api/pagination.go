package api

import (
	"errors"  // Range errors
	"math"    // Offset bounds
	"net/url" // URL building
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// PageSize is the fixed number of rows per list page
const PageSize = 10

// maxPage is the last page whose offset and next link fit in an int
const maxPage = math.MaxInt/PageSize - 1

// pageParam reads the 0-based page query parameter, falling back to 0.
// Pages past maxPage are clamped to it, which lies beyond any table.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return maxPage // Too large for an int
	}
	if err != nil || page < 0 {
		return 0
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

// pageOptions links the neighbouring pages of page given the total row count
func pageOptions(c *gin.Context, page int, total int64) *Options {
	opts := &Options{}
	if page > 0 {
		opts.Previous = pageURL(c, page-1) // There is a page before this one
	}
	if int64((page+1)*PageSize) < total {
		opts.Next = pageURL(c, page+1) // Rows remain after this page
	}
	return opts
}

// pageURL rebuilds the request URL pointing at page, keeping other query parameters
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto // Behind a proxy
	}
	query := c.Request.URL.Query()
	query.Set("page", strconv.Itoa(page))
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: query.Encode()}
	return u.String()
}
