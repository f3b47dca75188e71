package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads ?page and ?limit, falling back to page 1 of 20.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// optionalDay parses ?day when present. ok is false after an error response was written.
func optionalDay(c *gin.Context) (*int, bool) {
	raw := strings.TrimSpace(c.Query("day"))
	if raw == "" {
		return nil, true
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "day must be an integer between 0 and 6")
		return nil, false
	}
	return &day, true
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Invalid(err, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Invalid(err, message))
		return false
	}
	return true
}

func badRequest(c *gin.Context, message string) {
	response.Error(c, appErrors.Clone(appErrors.ErrValidation, message))
}
