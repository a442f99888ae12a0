package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/review/model"
	"bookshelf-backend/internal/domains/review/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/validation"
)

// Handler - HTTP handler for /reviews
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// List - GET /reviews?user_id=&book_id=
func (h *Handler) List(c *gin.Context) {
	values := c.Request.URL.Query()

	params, err := query.ParseParams(values)
	if err != nil {
		response.Error(c, err)
		return
	}

	var scope model.Scope
	if scope.UserID, err = query.OptionalID(values, "user_id"); err != nil {
		response.Error(c, err)
		return
	}
	if scope.BookID, err = query.OptionalID(values, "book_id"); err != nil {
		response.Error(c, err)
		return
	}

	reviews, info, err := h.service.List(c.Request.Context(), scope, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, model.ToResponses(reviews), info)
}

// Show - GET /reviews/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrReviewNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, review.ToResponse())
}

// Create - POST /reviews
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReviewRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review.ToResponse())
}

// Update - PUT /reviews/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrReviewNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req model.UpdateReviewRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.service.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, review.ToResponse())
}

// Delete - DELETE /reviews/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrReviewNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
