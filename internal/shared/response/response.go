package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared/apperror"
	"bookshelf-backend/internal/shared/query"
)

// Resource is the single-item envelope: {data, status}.
type Resource struct {
	Data   any `json:"data"`
	Status int `json:"status"`
}

// Collection is the list envelope: {data, paginatorInfo, status}.
type Collection struct {
	Data          any            `json:"data"`
	PaginatorInfo query.PageInfo `json:"paginatorInfo"`
	Status        int            `json:"status"`
}

// Message is used by endpoints that answer with a sentence only.
type Message struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorBody is every non-2xx body. Errors is set for 422 only.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Resource{Data: data, Status: status})
}

// SuccessWith adds top-level fields next to data, e.g. an issued token.
func SuccessWith(c *gin.Context, status int, data any, extra gin.H) {
	body := gin.H{"data": data, "status": status}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func Paginated(c *gin.Context, data any, info query.PageInfo) {
	c.JSON(http.StatusOK, Collection{Data: data, PaginatorInfo: info, Status: http.StatusOK})
}

func Text(c *gin.Context, status int, message string) {
	c.JSON(status, Message{Message: message, Status: status})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes the envelope for err and aborts the chain.
// Causes of 5xx errors are logged and never sent to the client.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Int("status", status).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorBody{Message: appErr.Message, Errors: appErr.Fields})
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, apperror.Unauthenticated(message))
}

func Forbidden(c *gin.Context, message string) {
	Error(c, apperror.Forbidden(message))
}

func NotFound(c *gin.Context, message string) {
	Error(c, apperror.NotFound(message))
}
