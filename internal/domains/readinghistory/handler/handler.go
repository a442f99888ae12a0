package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/readinghistory/model"
	"bookshelf-backend/internal/domains/readinghistory/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/validation"
)

// Handler - HTTP handler for /reading_histories
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// List - GET /reading_histories
func (h *Handler) List(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	items, info, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, model.ToResponses(items), info)
}

// Show - GET /reading_histories/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrHistoryNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item.ToResponse())
}

// Create - POST /reading_histories
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if _, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Text(c, http.StatusCreated, model.MsgCreated)
}

// Update - PUT /reading_histories/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrHistoryNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req model.UpdateRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	if _, err := h.service.UpdateIsRead(c.Request.Context(), middleware.ActorFrom(c), id, req); err != nil {
		response.Error(c, err)
		return
	}

	response.Text(c, http.StatusOK, model.MsgRead)
}

// Delete - DELETE /reading_histories/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrHistoryNotFound)
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
