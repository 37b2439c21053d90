package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trainwell/pathway-api/internal/dto"
	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/service"
	"github.com/trainwell/pathway-api/pkg/config"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
	"github.com/trainwell/pathway-api/pkg/response"
)

// ResourceHandler exposes resource endpoints, including upload, the library
// visibility view and anchor associations.
type ResourceHandler struct {
	resources *service.ResourceService
	uploads   config.UploadsConfig
}

// NewResourceHandler constructs ResourceHandler.
func NewResourceHandler(resources *service.ResourceService, uploads config.UploadsConfig) *ResourceHandler {
	return &ResourceHandler{resources: resources, uploads: uploads}
}

// Create godoc
// @Summary Create resource
// @Description Multipart form; the "file" part is optional. Anchor fields bind the resource to a program, month, component, workshop, agenda item or event.
// @Tags Resources
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param type formData string true "Resource type"
// @Param category formData string true "Category"
// @Param file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	req := service.CreateResourceRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Type:        c.PostForm("type"),
		Format:      c.PostForm("format"),
		Category:    c.PostForm("category"),
		IsPublic:    c.PostForm("is_public") == "true",
		Version:     c.PostForm("version"),
	}
	if tags := c.PostForm("tags"); tags != "" {
		req.Tags = splitCSV(tags)
	}
	req.ProgramID = optionalForm(c, "program_id")
	req.ComponentID = optionalForm(c, "component_id")
	req.WorkshopID = optionalForm(c, "workshop_id")
	req.AgendaItemID = optionalForm(c, "agenda_item_id")
	req.LearningEventID = optionalForm(c, "learning_event_id")
	req.AssignedToUserID = optionalForm(c, "assigned_to_user_id")
	if month := c.PostForm("month_number"); month != "" {
		n, err := strconv.Atoi(month)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month_number must be an integer"))
			return
		}
		req.MonthNumber = &n
	}
	if claims := claimsFromContext(c); claims != nil {
		req.UploadedBy = claims.UserID
	}

	if header, err := c.FormFile("file"); err == nil && header != nil {
		if h.uploads.MaxFileSizeBytes > 0 && header.Size > h.uploads.MaxFileSizeBytes {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds maximum upload size"))
			return
		}
		contentType := header.Header.Get("Content-Type")
		if !h.mimeAllowed(contentType) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file type not allowed"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		defer file.Close()
		req.File = file
		req.FileName = header.Filename
		req.FileSize = header.Size
		req.MimeType = contentType
	}

	resource, err := h.resources.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// List godoc
// @Summary List resources
// @Description Without programId this is a plain filtered listing. With programId the program library visibility rules apply, optionally narrowed by month and componentId.
// @Tags Resources
// @Produce json
// @Param programId query string false "Program scope"
// @Param month query int false "Month scope (requires programId)"
// @Param componentId query string false "Component scope (requires programId)"
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	if programID := c.Query("programId"); programID != "" {
		qctx := dto.ResourceContext{ProgramID: programID}
		if month := c.Query("month"); month != "" {
			n, err := strconv.Atoi(month)
			if err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be an integer"))
				return
			}
			qctx.MonthNumber = &n
		}
		if componentID := c.Query("componentId"); componentID != "" {
			qctx.ComponentID = &componentID
		}
		resources, err := h.resources.ListLibrary(c.Request.Context(), qctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, resources, nil)
		return
	}

	var filter models.ResourceFilter
	filter.Category = c.Query("category")
	filter.Status = models.ResourceStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	resources, pagination, err := h.resources.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// Get godoc
// @Summary Get resource detail
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.resources.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Update godoc
// @Summary Update resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body service.UpdateResourceRequest true "Resource payload"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	var req service.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.resources.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Delete godoc
// @Summary Delete resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 204 {object} response.Envelope
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	if err := h.resources.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Link godoc
// @Summary Link resource to an anchor
// @Description anchorKind is one of workshop, agenda-item, learning-event
// @Tags Resources
// @Accept json
// @Produce json
// @Param anchorKind path string true "Anchor kind"
// @Param payload body dto.LinkResourceRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources/link/{anchorKind} [post]
func (h *ResourceHandler) Link(c *gin.Context) {
	var req dto.LinkResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.resources.Link(c.Request.Context(), models.AnchorKind(c.Param("anchorKind")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Unlink godoc
// @Summary Unlink resource from an anchor
// @Tags Resources
// @Produce json
// @Param anchorKind path string true "Anchor kind"
// @Param resourceId path string true "Resource ID"
// @Param anchorId path string true "Anchor ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/unlink/{anchorKind}/{resourceId}/{anchorId} [delete]
func (h *ResourceHandler) Unlink(c *gin.Context) {
	kind := models.AnchorKind(c.Param("anchorKind"))
	if err := h.resources.Unlink(c.Request.Context(), kind, c.Param("resourceId"), c.Param("anchorId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Anchored godoc
// @Summary List resources associated with an anchor
// @Description Union of direct anchor-column matches and link rows, deduplicated by resource id
// @Tags Resources
// @Produce json
// @Param anchorKind path string true "Anchor kind"
// @Param anchorId path string true "Anchor ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources/{anchorKind}/{anchorId} [get]
func (h *ResourceHandler) Anchored(c *gin.Context) {
	// The route shares its first wildcard with /resources/:id, so the anchor
	// kind arrives under "id".
	resources, err := h.resources.ResolveLinksFor(c.Request.Context(), models.AnchorKind(c.Param("id")), c.Param("anchorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

func (h *ResourceHandler) mimeAllowed(contentType string) bool {
	if len(h.uploads.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range h.uploads.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func optionalForm(c *gin.Context, field string) *string {
	if value := strings.TrimSpace(c.PostForm(field)); value != "" {
		return &value
	}
	return nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
