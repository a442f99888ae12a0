package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/service"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/validation"
)

// Handler - HTTP handler for /authors
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// List - GET /authors
func (h *Handler) List(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	authors, info, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, model.ToResponses(authors), info)
}

// Show - GET /authors/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrAuthorNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	author, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, author.ToResponse())
}

// Create - POST /authors
func (h *Handler) Create(c *gin.Context) {
	var req model.AuthorRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	author, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, author.ToResponse())
}

// Update - PUT /authors/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrAuthorNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req model.AuthorRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	author, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, author.ToResponse())
}

// Delete - DELETE /authors/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrAuthorNotFound)
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
