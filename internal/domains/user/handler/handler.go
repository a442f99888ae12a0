package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/user/model"
	"bookshelf-backend/internal/domains/user/service"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/validation"
)

// Handler - HTTP handler for authentication and /users
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ========================================
// AUTHENTICATION
// ========================================

// Register - POST /register
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWith(c, http.StatusCreated, user.ToResponse(), gin.H{"token": token})
}

// Login - POST /login
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWith(c, http.StatusOK, user.ToResponse(), gin.H{"token": token})
}

// Session - GET /session
func (h *Handler) Session(c *gin.Context) {
	user, err := h.service.Session(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// Logout - POST /logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ========================================
// USERS
// ========================================

// List - GET /users
func (h *Handler) List(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	users, info, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, model.ToResponses(users), info)
}

// Show - GET /users/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrUserNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// Create - POST /users
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user.ToResponse())
}

// Update - PUT /users/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrUserNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req model.UpdateUserRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user.ToResponse())
}

// Delete - DELETE /users/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrUserNotFound)
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
