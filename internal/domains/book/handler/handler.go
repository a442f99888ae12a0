package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/shared/apperror"
	"bookshelf-backend/internal/shared/query"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/validation"
)

// formOverhead is the room left for text fields and part headers.
const formOverhead = 1 << 20

// UploadLimits caps the multipart parts of POST /books. Zero means no limit.
type UploadLimits struct {
	MaxImageBytes    int64
	MaxDocumentBytes int64
}

func (l UploadLimits) body() int64 {
	if l.MaxImageBytes <= 0 || l.MaxDocumentBytes <= 0 {
		return 0
	}
	return l.MaxImageBytes + l.MaxDocumentBytes + formOverhead
}

// Handler - HTTP handler for /books
type Handler struct {
	service service.ServiceInterface
	limits  UploadLimits
}

// NewHandler - constructor with DI
func NewHandler(service service.ServiceInterface, limits UploadLimits) *Handler {
	return &Handler{service: service, limits: limits}
}

// List - GET /books
func (h *Handler) List(c *gin.Context) {
	params, err := query.ParseParams(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	books, info, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, model.ToResponses(books), info)
}

// Show - GET /books/:id
func (h *Handler) Show(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	book, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}

// Create - POST /books (multipart/form-data)
func (h *Handler) Create(c *gin.Context) {
	if limit := h.limits.body(); limit > 0 {
		if c.Request.ContentLength > limit {
			response.Error(c, model.ErrUploadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		response.Error(c, model.ErrUploadTooLarge)
		return
	case err == nil:
		// Accept PHP-style author_ids[] as well.
		if ids, ok := form.Value["author_ids[]"]; ok {
			form.Value["author_ids"] = append(form.Value["author_ids"], ids...)
		}
	}

	var req model.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.ToAppError(err))
		return
	}

	image, imgErr := readFile(c, "image", h.limits.MaxImageBytes, model.ErrImageTooLarge)
	document, docErr := readFile(c, "book", h.limits.MaxDocumentBytes, model.ErrDocumentTooBig)
	for _, err := range []error{imgErr, docErr} {
		if errors.Is(err, model.ErrImageTooLarge) || errors.Is(err, model.ErrDocumentTooBig) {
			response.Error(c, err)
			return
		}
	}
	if imgErr != nil || docErr != nil {
		fields := map[string][]string{}
		if imgErr != nil {
			fields["image"] = []string{"The image field is required."}
		}
		if docErr != nil {
			fields["book"] = []string{"The book field is required."}
		}
		response.Error(c, apperror.ValidationFields(fields))
		return
	}

	book, err := h.service.Create(c.Request.Context(), req, image, document)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book.ToResponse())
}

// Update - PUT /books/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrBookNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req model.UpdateBookRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}

// Delete - DELETE /books/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := validation.PathID(c, "id", model.ErrBookNotFound)
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

// Rate - POST /books/ratings
func (h *Handler) Rate(c *gin.Context) {
	var req model.RateBookRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	book, err := h.service.ApplyRating(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book.ToResponse())
}

// readFile loads one uploaded part. Parts over limit are refused from the
// part header, before anything is read.
func readFile(c *gin.Context, field string, limit int64, tooLarge error) (model.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return model.File{}, err
	}
	if limit > 0 && header.Size > limit {
		return model.File{}, tooLarge
	}
	return open(header)
}

func open(header *multipart.FileHeader) (model.File, error) {
	f, err := header.Open()
	if err != nil {
		return model.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.File{}, err
	}

	return model.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
