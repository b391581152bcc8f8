package reports

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/pagination"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit godoc
// @Summary Submit an incident report
// @Description Create a pending report at a location. Severity defaults to moderate.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitRequest true "Report"
// @Success 201 {object} response.APIResponse{data=Report}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /reports [post]
func (h *Handler) Submit(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	report, err := h.service.Submit(c.Request.Context(), identity, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, report, "Report submitted")
}

// List godoc
// @Summary List reports
// @Description Newest first. mine=true restricts to the caller's own reports.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, investigating or resolved"
// @Param severity query string false "minor, moderate or severe"
// @Param mine query bool false "Only my reports"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.APIResponse{data=response.PageData{items=[]Report}}
// @Failure 401 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /reports [get]
func (h *Handler) List(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	page := pagination.FromRequest(c.Query("page"), c.Query("limit"))
	filter := ListFilter{
		Status:   Status(c.Query("status")),
		Severity: Severity(c.Query("severity")),
		Page:     page.Page,
		Limit:    page.Limit,
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine && identity != nil {
		filter.AuthorID = identity.ID
	}

	items, total, err := h.service.List(c.Request.Context(), identity, filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, items, total, page.Limit, page.Page)
}

// Get godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=Report}
// @Failure 401 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /reports/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	report, err := h.service.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report)
}

// UpdateStatus godoc
// @Summary Change a report's status
// @Description Admin only. pending -> investigating|resolved, investigating -> resolved|pending. Resolved is final.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body TransitionRequest true "Target status"
// @Success 200 {object} response.APIResponse{data=Report}
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /reports/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	identity, _ := auth.CurrentIdentity(c)

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	report, err := h.service.Transition(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report, "Status updated")
}
