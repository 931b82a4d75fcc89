package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sugarrush/sweetshop/internal/config"
	"github.com/sugarrush/sweetshop/internal/domain/sweet"
	"github.com/sugarrush/sweetshop/internal/observability"
)

type SweetsStore interface {
	Create(ctx context.Context, req sweet.CreateSweetRequest) (sweet.Sweet, error)
	List(ctx context.Context) ([]sweet.Sweet, error)
	Search(ctx context.Context, query string) ([]sweet.Sweet, error)
	Update(ctx context.Context, id int64, req sweet.UpdateSweetRequest) (sweet.Sweet, error)
	Delete(ctx context.Context, id int64) error
	Purchase(ctx context.Context, id int64) (int, error)
	Restock(ctx context.Context, id int64, delta int) (int, error)
}

type SweetsHandler struct {
	repo SweetsStore
	prom *observability.Prom
}

func NewSweetsHandler(repo SweetsStore, prom *observability.Prom) *SweetsHandler {
	return &SweetsHandler{
		repo: repo,
		prom: prom,
	}
}

func (h *SweetsHandler) countInventoryOp(op, outcome string) {
	if h.prom != nil {
		h.prom.InventoryOpsTotal.WithLabelValues(op, outcome).Inc()
	}
}

// parseIDParam rejects non-numeric ids before they reach the store.
func parseIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "sweet id must be a positive integer", gin.H{
			"fields": []FieldError{
				{Field: "id", Rule: "numeric", Message: "must be a positive integer"},
			},
		})
		return 0, false
	}

	return id, true
}

func (h *SweetsHandler) CreateSweet(ctx *gin.Context) {
	var req sweet.CreateSweetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	created, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create sweet")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *SweetsHandler) ListSweets(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	sweets, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list sweets")

		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, sweets)
}

func (h *SweetsHandler) SearchSweets(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))

	if q == "" {
		RespondBadRequest(ctx, "Search query required", gin.H{
			"fields": []FieldError{
				{Field: "q", Rule: "required", Message: "is required"},
			},
		})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	sweets, err := h.repo.Search(cctx, q)

	if err != nil {
		RespondInternal(ctx, "Could not search sweets")
		return
	}

	// an empty result set is a valid answer, not an error
	RespondJSONWithETag(ctx, http.StatusOK, sweets)
}

func (h *SweetsHandler) UpdateSweet(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)

	if !ok {
		return
	}

	var req sweet.UpdateSweetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	updated, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, sweet.ErrNotFound) {
			RespondNotFound(ctx, "Sweet not found")
			return
		}
		RespondInternal(ctx, "Could not update sweet")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *SweetsHandler) DeleteSweet(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, sweet.ErrNotFound) {
			RespondNotFound(ctx, "Sweet not found")
			return
		}
		RespondInternal(ctx, "Could not delete sweet")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *SweetsHandler) PurchaseSweet(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	remaining, err := h.repo.Purchase(cctx, id)

	if err != nil {
		switch {
		case errors.Is(err, sweet.ErrNotFound):
			h.countInventoryOp("purchase", "not_found")
			RespondNotFound(ctx, "Sweet not found")
		case errors.Is(err, sweet.ErrOutOfStock):
			h.countInventoryOp("purchase", "out_of_stock")
			RespondOutOfStock(ctx, "Out of stock")
		default:
			h.countInventoryOp("purchase", "error")
			RespondInternal(ctx, "Could not purchase sweet")
		}
		return
	}

	h.countInventoryOp("purchase", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Purchase successful",
		"quantity": remaining,
	})
}

func (h *SweetsHandler) RestockSweet(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)

	if !ok {
		return
	}

	var req sweet.RestockRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	quantity, err := h.repo.Restock(cctx, id, *req.Quantity)

	if err != nil {
		if errors.Is(err, sweet.ErrNotFound) {
			h.countInventoryOp("restock", "not_found")
			RespondNotFound(ctx, "Sweet not found")
			return
		}
		h.countInventoryOp("restock", "error")
		RespondInternal(ctx, "Could not restock sweet")
		return
	}

	h.countInventoryOp("restock", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Restock successful",
		"quantity": quantity,
	})
}
