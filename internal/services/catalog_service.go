package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CatalogService handles products and categories. Catalog authoring lives outside
// this service; it exposes the reads the storefront needs and the thin writes that
// trigger fan-out.
type CatalogService struct {
	products      repositories.ProductRepository
	categories    repositories.CategoryRepository
	notifications *NotificationService
	publisher     EventPublisher
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, categories repositories.CategoryRepository, notifications *NotificationService, publisher EventPublisher) *CatalogService {
	return &CatalogService{
		products:      products,
		categories:    categories,
		notifications: notifications,
		publisher:     publisher,
	}
}

// GetAllProducts retrieves all products.
func (s *CatalogService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductsByCategory retrieves the products of an existing category.
func (s *CatalogService) GetProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.products.GetByCategory(ctx, categoryID)
}

// GetAllCategories retrieves all categories.
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

// GetCategoryByID retrieves a category by its ID.
func (s *CatalogService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// CreateProduct creates a new product. Rating fields always start at zero.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateStruct(product); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	return s.products.Create(ctx, product)
}

// UpdateProduct updates the catalog fields of an existing product and returns the
// stored result. Rating and review count in the input are ignored. When stock goes
// from zero to positive, users with the product on their wishlist are notified.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := validateStruct(product); err != nil {
		return nil, err
	}
	existing, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	updated, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if existing.Stock == 0 && updated.Stock > 0 {
		s.notifications.NotifyBackInStock(ctx, updated)
	}
	return updated, nil
}

// DeleteProduct deletes a product by its ID. Carts, wishlists and reviews that
// reference it are left alone; their reads tolerate the dangling id.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// CreateCategory creates a category and fans the news out to every admin and
// customer. Fan-out is best-effort; the category persists either way.
func (s *CatalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := validateStruct(category); err != nil {
		return err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return err
	}

	admins, customers := s.notifications.NotifyCategoryCreated(ctx, category)
	logger.Info().
		Str("category_id", category.ID).
		Int("admins", admins).
		Int("customers", customers).
		Msg("Category created")

	publishEvent(ctx, s.publisher, "category.created", map[string]any{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	_, err := s.categories.GetByID(ctx, categoryID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Validation("category %s does not exist", categoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to check category %s: %w", categoryID, err)
	}
	return nil
}
