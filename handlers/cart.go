package handlers

import (
	"context"
	"errors"
	"net/http"

	"creditcoach/middleware"
	"creditcoach/models"
	"creditcoach/services/cart"
	"creditcoach/services/catalog"
	"creditcoach/services/session"
	"creditcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductLookup resolves products from the catalog.
type ProductLookup interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (models.Product, error)
}

type CartHandler struct {
	carts   *session.Registry[*cart.Store]
	catalog ProductLookup
	logger  *zap.Logger
}

func NewCartHandler(carts *session.Registry[*cart.Store], catalog ProductLookup, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, logger: logger}
}

func (h *CartHandler) store(c *gin.Context) *cart.Store {
	return sessionCart(c, h.carts, h.logger)
}

// maxRequestQuantity bounds the quantity a single request may ask for.
const maxRequestQuantity = 9999

// sessionCart returns the caller's cart, retrying the mirror read if the
// first one failed.
func sessionCart(c *gin.Context, carts *session.Registry[*cart.Store], logger *zap.Logger) *cart.Store {
	store := carts.Get(c.Request.Context(), middleware.SessionID(c))
	if err := store.Rehydrate(c.Request.Context()); err != nil {
		logger.Debug("cart: mirror still unavailable", zap.Error(err))
	}
	return store
}

// addItemRequest accepts any product payload shape the pages send, plus a
// quantity. Only the identifier is trusted; title, image and price come from
// the catalog.
type addItemRequest struct {
	models.ProductPayload
	Quantity int `json:"quantity"`
}

// GetCartHandler renders the cart.
func (h *CartHandler) GetCartHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.store(c).View())
}

// AddItemHandler adds a product to the cart.
func (h *CartHandler) AddItemHandler(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Quantity > maxRequestQuantity {
		utils.JSONError(c, http.StatusBadRequest, "Quantity is too large", "")
		return
	}

	ref, err := cart.NormalizeProduct(req.ProductPayload)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid product", err.Error())
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), ref.ID)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		utils.JSONError(c, http.StatusNotFound, "Product not found", ref.ID)
		return
	case err != nil:
		h.logger.Error("cart: product lookup failed", zap.String("productId", ref.ID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Could not load the product. Please try again.", "")
		return
	}

	store := h.store(c)
	if err := store.AddItem(c.Request.Context(), product, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrQuantityOverflow) {
			utils.JSONError(c, http.StatusBadRequest, "Quantity is too large", "")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid product", err.Error())
		return
	}
	c.JSON(http.StatusOK, store.View())
}

// UpdateQuantityHandler sets the quantity of a line; zero removes it.
func (h *CartHandler) UpdateQuantityHandler(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if *req.Quantity > maxRequestQuantity {
		utils.JSONError(c, http.StatusBadRequest, "Quantity is too large", "")
		return
	}
	store := h.store(c)
	store.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, store.View())
}

// RemoveItemHandler deletes a line.
func (h *CartHandler) RemoveItemHandler(c *gin.Context) {
	store := h.store(c)
	store.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, store.View())
}

// ClearCartHandler empties the cart.
func (h *CartHandler) ClearCartHandler(c *gin.Context) {
	store := h.store(c)
	store.Clear(c.Request.Context())
	c.JSON(http.StatusOK, store.View())
}

// ListProductsHandler lists the shop catalog.
func (h *CartHandler) ListProductsHandler(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.logger.Error("catalog: list failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Could not load products. Please try again.", "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProductHandler returns one catalog product.
func (h *CartHandler) GetProductHandler(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		utils.JSONError(c, http.StatusNotFound, "Product not found", c.Param("id"))
		return
	case err != nil:
		h.logger.Error("catalog: get failed", zap.String("productId", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Could not load the product. Please try again.", "")
		return
	}
	c.JSON(http.StatusOK, product)
}
