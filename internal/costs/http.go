package costs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/auth"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.DELETE("/:cost_id", h.delete)
}

type createReq struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Category  string          `json:"category"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	in := Input{Name: req.Name, UnitPrice: req.UnitPrice, Category: domain.Category(req.Category)}
	if err := in.Validate(); err != nil {
		ve, _ := domain.AsValidation(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false, "message": "validation failed", "field_errors": ve.Fields,
		})
		return
	}

	rc, err := h.repo.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "persistence error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "reusable cost created", "data": rc})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "persistence error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (h *Handler) delete(c *gin.Context) {
	err := h.repo.Delete(c.Request.Context(), auth.UserID(c), c.Param("cost_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "persistence error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "reusable cost deleted"})
}
