package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/core"
)

type UserActionRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject makeAdmin revokeAdmin"`
}

type AuditQueryParams struct {
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	EntityID   int64  `form:"entity_id"`
	ActorID    int64  `form:"actor_id"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.CallerFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) ModerateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.ApplyAction(c.Request.Context(), middleware.CallerFromContext(c), id, core.UserAction(req.Action))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/admin/users", h.ListUsers)
	admin.PUT("/admin/users/:id", h.ModerateUser)
}

type AuditHandler struct {
	audit AuditService
}

func NewAuditHandler(audit AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var params AuditQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	logs, err := h.audit.List(c.Request.Context(), middleware.CallerFromContext(c), core.AuditQuery{
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		ActorID:    params.ActorID,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"limit":  params.Limit,
		"offset": params.Offset,
		"count":  len(logs),
	})
}

func (h *AuditHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/admin/audit", h.ListAuditLogs)
}
