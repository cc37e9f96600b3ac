package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profitcalc/profitcalc-backend/internal/auth"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
	"github.com/profitcalc/profitcalc-backend/internal/projects/finance"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
)

type Handler struct {
	svc *service.ProjectService
}

func Register(rg *gin.RouterGroup, svc *service.ProjectService) {
	h := &Handler{svc: svc}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:project_id", h.get)
	rg.PATCH("/:project_id", h.rename)
	rg.PUT("/:project_id/favorite", h.favorite)
	rg.DELETE("/:project_id", h.delete)

	rg.PUT("/:project_id/selling-price", h.setSellingPrice)
	rg.PUT("/:project_id/quantity", h.setQuantity)

	rg.POST("/:project_id/costs", h.createCost)
	rg.PUT("/:project_id/costs/:cost_id", h.updateCost)
	rg.DELETE("/:project_id/costs/:cost_id", h.deleteCost)
}

func (h *Handler) create(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), auth.UserID(c), domain.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{Success: true, Message: "project created", Data: p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListProjects(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), auth.UserID(c), c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{Success: true, Data: gin.H{
		"project":   p.Project,
		"costs":     p.Costs,
		"breakdown": finance.Compute(p.Project),
	}})
}

func (h *Handler) rename(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	p, err := h.svc.RenameProject(c.Request.Context(), auth.UserID(c), c.Param("project_id"), domain.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: "project updated", Data: p})
}

func (h *Handler) favorite(c *gin.Context) {
	var req favoriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	if err := h.svc.SetFavorite(c.Request.Context(), auth.UserID(c), c.Param("project_id"), req.IsFavorite); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), auth.UserID(c), c.Param("project_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: "project deleted"})
}

func (h *Handler) createCost(c *gin.Context) {
	var req costReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	cost, outcome, err := h.svc.CreateCost(c.Request.Context(), auth.UserID(c), c.Param("project_id"), costInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apiResponse{
		Success:  true,
		Message:  "cost added",
		Data:     gin.H{"cost": cost, "totals": outcome.Totals},
		Warnings: outcome.Warnings,
	})
}

func (h *Handler) updateCost(c *gin.Context) {
	var req costReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	cost, outcome, err := h.svc.UpdateCost(c.Request.Context(), auth.UserID(c),
		c.Param("project_id"), c.Param("cost_id"), costInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success:  true,
		Message:  "cost updated",
		Data:     gin.H{"cost": cost, "totals": outcome.Totals},
		Warnings: outcome.Warnings,
	})
}

func (h *Handler) deleteCost(c *gin.Context) {
	outcome, err := h.svc.DeleteCost(c.Request.Context(), auth.UserID(c),
		c.Param("project_id"), c.Param("cost_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success:  true,
		Message:  "cost deleted",
		Data:     gin.H{"totals": outcome.Totals},
		Warnings: outcome.Warnings,
	})
}

func (h *Handler) setSellingPrice(c *gin.Context) {
	var req sellingPriceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	outcome, err := h.svc.SetSellingPrice(c.Request.Context(), auth.UserID(c), c.Param("project_id"), req.SellingPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success:  true,
		Message:  "selling price updated",
		Data:     gin.H{"totals": outcome.Totals},
		Warnings: outcome.Warnings,
	})
}

func (h *Handler) setQuantity(c *gin.Context) {
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c)
		return
	}

	outcome, err := h.svc.SetQuantity(c.Request.Context(), auth.UserID(c), c.Param("project_id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{
		Success:  true,
		Message:  "quantity updated",
		Data:     gin.H{"totals": outcome.Totals},
		Warnings: outcome.Warnings,
	})
}

func costInput(req costReq) domain.CostInput {
	return domain.CostInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Category:    domain.Category(req.Category),
	}
}

func respondBadBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, apiResponse{Success: false, Message: "invalid body"})
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Repository failures are reported as a generic persistence error so
// driver details never reach the client.
func respondError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, apiResponse{
			Success:     false,
			Message:     "validation failed",
			FieldErrors: ve.Fields,
		})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, apiResponse{Success: false, Message: "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Message: "persistence error"})
}
