package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/service"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
	"github.com/trainwell/pathway-api/pkg/response"
)

// WorkshopHandler exposes workshop and agenda endpoints.
type WorkshopHandler struct {
	workshops *service.WorkshopService
	agendas   *service.AgendaService
}

// NewWorkshopHandler constructs WorkshopHandler.
func NewWorkshopHandler(workshops *service.WorkshopService, agendas *service.AgendaService) *WorkshopHandler {
	return &WorkshopHandler{workshops: workshops, agendas: agendas}
}

// List godoc
// @Summary List workshops
// @Tags Workshops
// @Produce json
// @Param programId query string false "Filter by program"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workshops [get]
func (h *WorkshopHandler) List(c *gin.Context) {
	var filter models.WorkshopFilter
	filter.ProgramID = c.Query("programId")
	filter.Status = models.WorkshopStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	workshops, pagination, err := h.workshops.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshops, pagination)
}

// Get godoc
// @Summary Get workshop detail
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id} [get]
func (h *WorkshopHandler) Get(c *gin.Context) {
	workshop, err := h.workshops.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}

// Create godoc
// @Summary Create workshop
// @Tags Workshops
// @Accept json
// @Produce json
// @Param payload body service.WorkshopRequest true "Workshop payload"
// @Success 201 {object} response.Envelope
// @Router /workshops [post]
func (h *WorkshopHandler) Create(c *gin.Context) {
	var req service.WorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	workshop, err := h.workshops.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workshop)
}

// Update godoc
// @Summary Update workshop
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body service.WorkshopRequest true "Workshop payload"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id} [put]
func (h *WorkshopHandler) Update(c *gin.Context) {
	var req service.WorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	workshop, err := h.workshops.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workshop, nil)
}

// Delete godoc
// @Summary Delete workshop
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 204 {object} response.Envelope
// @Router /workshops/{id} [delete]
func (h *WorkshopHandler) Delete(c *gin.Context) {
	if err := h.workshops.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAgenda godoc
// @Summary List workshop agenda
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/agenda [get]
func (h *WorkshopHandler) ListAgenda(c *gin.Context) {
	items, err := h.agendas.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateAgendaItem godoc
// @Summary Add agenda item
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body service.AgendaItemRequest true "Agenda item payload"
// @Success 201 {object} response.Envelope
// @Router /workshops/{id}/agenda [post]
func (h *WorkshopHandler) CreateAgendaItem(c *gin.Context) {
	var req service.AgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.agendas.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateAgendaItem godoc
// @Summary Update agenda item
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param itemId path string true "Agenda item ID"
// @Param payload body service.AgendaItemRequest true "Agenda item payload"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/agenda/{itemId} [put]
func (h *WorkshopHandler) UpdateAgendaItem(c *gin.Context) {
	var req service.AgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.agendas.Update(c.Request.Context(), c.Param("itemId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteAgendaItem godoc
// @Summary Delete agenda item
// @Tags Workshops
// @Produce json
// @Param id path string true "Workshop ID"
// @Param itemId path string true "Agenda item ID"
// @Success 204 {object} response.Envelope
// @Router /workshops/{id}/agenda/{itemId} [delete]
func (h *WorkshopHandler) DeleteAgendaItem(c *gin.Context) {
	if err := h.agendas.Delete(c.Request.Context(), c.Param("itemId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderAgenda godoc
// @Summary Reorder workshop agenda
// @Description Rewrites order_index for every listed item in one transaction
// @Tags Workshops
// @Accept json
// @Produce json
// @Param id path string true "Workshop ID"
// @Param payload body service.ReorderAgendaRequest true "Ordered item ids"
// @Success 200 {object} response.Envelope
// @Router /workshops/{id}/agenda/reorder [put]
func (h *WorkshopHandler) ReorderAgenda(c *gin.Context) {
	var req service.ReorderAgendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	items, err := h.agendas.Reorder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
