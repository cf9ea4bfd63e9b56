package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/effisoft/nutrilab-api/middleware"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type listQuery struct {
	Limit   int
	Offset  int
	Keyword string
	Active  *bool
}

// parseListQuery reads the shared pagination and filter query parameters.
// Unparseable numbers fall back to zero, which means "no limit/offset".
func parseListQuery(c *gin.Context) listQuery {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	q := listQuery{
		Limit:   limit,
		Offset:  offset,
		Keyword: strings.TrimSpace(c.Query("keyword")),
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		q.Active = &active
	}
	return q
}

func applyPagination(query *gorm.DB, q listQuery) *gorm.DB {
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	return query
}

// getDB fetches the request-scoped DB handle; on a nil handle it writes the
// server-error response and the caller must return immediately.
func getDB(c *gin.Context) *gorm.DB {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
	}
	return db
}

// parseIDParam parses the :id path parameter. On failure it writes the
// user-error response and returns ok=false.
func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid ID parameter",
			Err: fmt.Errorf("id %q is not a positive integer", raw),
		})
		return 0, false
	}
	return uint(id), true
}
