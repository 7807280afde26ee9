package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for products and categories.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Get("/categories", h.HandleGetCategories)
	router.Get("/categories/:id/products", h.HandleGetCategoryProducts)
}

// RegisterAdminRoutes registers catalog management under an admin-only router.
func (h *CatalogHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/categories", h.HandleCreateCategory)
	admin.Post("/products", h.HandleCreateProduct)
	admin.Put("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *CatalogHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *CatalogHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetCategories retrieves all categories.
func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// HandleGetCategoryProducts retrieves the products of one category.
func (h *CatalogHandler) HandleGetCategoryProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleCreateCategory creates a category and notifies every user.
func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := parseBody(c, &category); err != nil {
		return respondError(c, err)
	}
	category.ID = ""
	if err := h.service.CreateCategory(c.UserContext(), &category); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleCreateProduct creates a product.
func (h *CatalogHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := parseBody(c, &product); err != nil {
		return respondError(c, err)
	}
	product.ID = ""
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the catalog fields of a product.
func (h *CatalogHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return respondError(c, &requestError{message: "Invalid request body", cause: err})
	}
	product.ID = c.Params("id")

	updated, err := h.service.UpdateProduct(c.UserContext(), &product)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
