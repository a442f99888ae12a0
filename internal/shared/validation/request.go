package validation

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/apperror"
)

// BindJSON decodes the request body into v and validates it.
func BindJSON(c *gin.Context, v Validatable) error {
	if err := c.ShouldBindJSON(v); err != nil {
		if appErr := ToAppError(err); appErr != err {
			return appErr
		}
		return apperror.Validation("body", "The request body must be valid JSON.")
	}
	return Check(v)
}

// PathID reads a positive integer path parameter. Anything else is reported
// as notFound, since no row can carry that id.
func PathID(c *gin.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, notFound
	}
	return id, nil
}
