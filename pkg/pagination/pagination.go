package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/lead-forensics/pkg/common"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// Params holds the limit/offset pair of a list request
type Params struct {
	Limit  int
	Offset int
}

// ParseParams reads limit and offset from the query string.
// Missing, malformed or non-positive values fall back to the defaults
// and limit is capped at MaxLimit.
func ParseParams(c *gin.Context) Params {
	p := Params{Limit: DefaultLimit, Offset: DefaultOffset}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		p.Limit = limit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		p.Offset = offset
	}

	return p
}

// BuildMeta builds response meta for a page of results
func BuildMeta(limit, offset int, total int64) *common.Meta {
	meta := &common.Meta{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: HasMore(offset, limit, total),
		Page:    GetCurrentPage(offset, limit),
	}
	if limit > 0 && total > 0 {
		meta.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return meta
}

// HasMore reports whether rows remain after the current page
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetCurrentPage returns the 1-based page number for an offset
func GetCurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
