package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
	"github.com/profitcalc/profitcalc-backend/internal/users"
)

type Handler struct {
	svc *Service
}

// Register mounts the admin surface. The route group must already be
// wrapped in the admin capability middleware.
func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}

	rg.GET("/users", h.listUsers)
	rg.PUT("/users/:user_id/role", h.changeRole)
	rg.GET("/users/:user_id/projects", h.listUserProjects)
	rg.DELETE("/users/:user_id/projects", h.deleteUserProjects)

	rg.GET("/projects/:project_id/costs", h.listProjectCosts)
	rg.PATCH("/projects/:project_id", h.updateProject)
	rg.DELETE("/projects/:project_id", h.deleteProject)
}

func (h *Handler) listUsers(c *gin.Context) {
	items, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

type changeRoleReq struct {
	Role string `json:"role"`
}

func (h *Handler) changeRole(c *gin.Context) {
	var req changeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	role := users.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false, "message": "validation failed",
			"field_errors": gin.H{"role": []string{"role must be user, moderator or admin"}},
		})
		return
	}

	if err := h.svc.ChangeUserRole(c.Request.Context(), c.Param("user_id"), role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role updated"})
}

func (h *Handler) listUserProjects(c *gin.Context) {
	items, err := h.svc.ListUserProjects(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (h *Handler) deleteUserProjects(c *gin.Context) {
	deleted, err := h.svc.DeleteUserProjects(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "projects deleted", "data": gin.H{"deleted": deleted}})
}

func (h *Handler) listProjectCosts(c *gin.Context) {
	items, err := h.svc.ListProjectCosts(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

type updateProjectReq struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

func (h *Handler) updateProject(c *gin.Context) {
	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	p, warnings, err := h.svc.UpdateProject(c.Request.Context(), c.Param("project_id"), UpdateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		SellingPrice: req.SellingPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "project updated", "data": p, "warnings": warnings})
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("project_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "project deleted"})
}

func respondError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false, "message": "validation failed", "field_errors": ve.Fields,
		})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "persistence error"})
}
