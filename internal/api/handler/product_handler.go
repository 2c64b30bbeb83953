package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vermahardware/storefront/internal/api/middleware"
	"github.com/vermahardware/storefront/internal/core/ports"
)

// ViewSink accepts product views for asynchronous recording. Enqueue must not
// block; it reports false when the event was dropped, and logs the drop itself.
type ViewSink interface {
	Enqueue(ev ports.ViewEvent) bool
}

// ProductHandler handles HTTP requests for catalog operations.
type ProductHandler struct {
	catalog ports.CatalogService
	views   ViewSink
}

// NewProductHandler builds a ProductHandler. views may be nil, in which case
// product views are not recorded.
func NewProductHandler(catalog ports.CatalogService, views ViewSink) *ProductHandler {
	return &ProductHandler{catalog: catalog, views: views}
}

// List handles GET /products.
//
// @Summary      List products, newest first
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Only products in this category"
// @Success      200       {object}  productListResponse
// @Failure      500       {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Products: products, Total: len(products)})
}

// Get handles GET /products/:id. A signed-in caller's view is recorded into
// their recently viewed list.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if user := middleware.UserFrom(c); user != nil && h.views != nil {
		h.views.Enqueue(ports.ViewEvent{UserID: user.ID, ProductID: product.ID})
	}

	return c.JSON(http.StatusOK, product)
}

// Categories handles GET /categories.
//
// @Summary      Distinct product categories
// @Tags         products
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Router       /categories [get]
func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: categories})
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.Create(c.Request().Context(), actor, ports.ProductInput{
		Name:          req.Name,
		Price:         req.Price,
		Description:   req.Description,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		ImagePublicID: req.ImagePublicID,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/products/"+product.ID)
	return c.JSON(http.StatusCreated, product)
}

// Update handles PATCH /products/:id. Omitted fields are left unchanged.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.catalog.Update(c.Request().Context(), actor, c.Param("id"), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
