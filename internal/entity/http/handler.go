package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/explore-grabby/booking-backend/internal/auth"
	"github.com/explore-grabby/booking-backend/internal/entity"
	"github.com/explore-grabby/booking-backend/internal/image"
	"github.com/explore-grabby/booking-backend/internal/logger"
	"github.com/explore-grabby/booking-backend/internal/pkg/request"
	"github.com/explore-grabby/booking-backend/internal/pkg/response"
)

type EntityHandler struct {
	service   entity.Service
	images    image.Service
	adminRole string
}

func NewHandler(service entity.Service, images image.Service, adminRole string) *EntityHandler {
	return &EntityHandler{service: service, images: images, adminRole: adminRole}
}

func (h *EntityHandler) respond(c *gin.Context, status int, e *entity.Entity) {
	has, err := h.images.HasImage(c.Request.Context(), e.ID)
	if err != nil {
		logger.WarnContext(c.Request.Context(), "image lookup failed", "entity_id", e.ID, "error", err)
	}
	c.JSON(status, NewEntityResponse(e, has))
}

// List returns bookable entities. Archived entities are only listed for admins.
func (h *EntityHandler) List(c *gin.Context) {
	var req ListEntitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	var filter entity.Filter
	if req.Kind != "" {
		kind, err := entity.ParseKind(req.Kind)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Kind = kind
	}

	switch req.Archived {
	case "", "false":
		archived := false
		filter.Archived = &archived
	case "true", "all":
		if !auth.HasRole(c, h.adminRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden: archived entities are admin only"})
			return
		}
		if req.Archived == "true" {
			archived := true
			filter.Archived = &archived
		}
	default:
		response.BadRequest(c, "archived must be one of true, false, all", nil)
		return
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EntityResponse, len(list))
	for i, e := range list {
		has, err := h.images.HasImage(c.Request.Context(), e.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		items[i] = NewEntityResponse(e, has)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *EntityHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, e)
}

func (h *EntityHandler) Create(c *gin.Context) {
	var body CreateEntityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	kind, err := entity.ParseKind(body.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	e, err := h.service.Create(c.Request.Context(), entity.CreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Details:     detailsFor(kind, body.ConsoleType, body.Color),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusCreated, e)
}

func (h *EntityHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateEntityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	e, err := h.service.Update(c.Request.Context(), uri.ID, entity.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Details:     body.mergeDetails(current.Details),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, e)
}

func (h *EntityHandler) Archive(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *EntityHandler) Unarchive(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *EntityHandler) setArchived(c *gin.Context, archived bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	e, err := h.service.SetArchived(c.Request.Context(), uri.ID, archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, e)
}

// Delete removes an entity that has never been booked, together with its image.
func (h *EntityHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.images.Delete(c.Request.Context(), uri.ID); err != nil {
		logger.WarnContext(c.Request.Context(), "delete entity image failed", "entity_id", uri.ID, "error", err)
	}
	c.Status(http.StatusNoContent)
}

// SeedDemo creates a handful of demo entities.
func (h *EntityHandler) SeedDemo(c *gin.Context) {
	created, err := h.service.SeedDemo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EntityResponse, len(created))
	for i, e := range created {
		items[i] = NewEntityResponse(e, false)
	}
	c.JSON(http.StatusCreated, response.NewListResponse(items))
}

// Image serves the entity's picture, falling back to the default one.
func (h *EntityHandler) Image(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	rc, err := h.images.Open(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveJPEG(c, rc)
}

func (h *EntityHandler) DefaultImage(c *gin.Context) {
	rc, err := h.images.OpenDefault(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveJPEG(c, rc)
}

func (h *EntityHandler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	h.upload(c, func(r io.Reader) error {
		return h.images.Upload(c.Request.Context(), uri.ID, r)
	})
}

func (h *EntityHandler) UploadDefaultImage(c *gin.Context) {
	h.upload(c, func(r io.Reader) error {
		return h.images.UploadDefault(c.Request.Context(), r)
	})
}

// upload reads the multipart "file" field and hands it to store.
func (h *EntityHandler) upload(c *gin.Context, store func(io.Reader) error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required", err)
		return
	}
	if fileHeader.Size > image.MaxUploadBytes {
		response.Error(c, image.ErrTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	if err := store(src); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func serveJPEG(c *gin.Context, rc io.ReadCloser) {
	defer rc.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Response already started.
		logger.WarnContext(c.Request.Context(), "stream image failed", "error", err)
	}
}
