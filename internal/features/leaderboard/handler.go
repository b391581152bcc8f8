package leaderboard

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary Contributor leaderboard
// @Description Contributors ranked by points (30 per report, 20 more per resolved report)
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} response.APIResponse{data=[]Entry}
// @Router /leaderboard [get]
func (h *Handler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	entries, err := h.service.Top(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, entries)
}

// Me godoc
// @Summary My contribution stats
// @Description The caller's leaderboard entry; unranked with zero points before a first report
// @Tags leaderboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=Entry}
// @Failure 401 {object} response.APIResponse
// @Router /leaderboard/me [get]
func (h *Handler) Me(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	entry, err := h.service.For(c.Request.Context(), identity)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, entry)
}
