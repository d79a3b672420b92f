package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ParsePagination reads page/limit query parameters, falling back to
// sane defaults on anything malformed.
func ParsePagination(ctx *gin.Context) (int, int) {
	page := defaultPage
	limit := defaultLimit

	if raw := ctx.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed

			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}

	return page, limit
}
