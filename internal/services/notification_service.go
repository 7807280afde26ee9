package services

import (
	"context"
	"fmt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Template is the content of a notification before it is addressed to anyone.
type Template struct {
	Type    models.NotificationType
	Title   string
	Message string
	Link    *string
}

func link(format string, args ...any) *string {
	s := fmt.Sprintf(format, args...)
	return &s
}

// NotificationService creates per-recipient notifications and serves them back
// to their owners.
type NotificationService struct {
	repo     repositories.NotificationRepository
	users    repositories.UserRepository
	wishlist repositories.WishlistRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, wishlist repositories.WishlistRepository) *NotificationService {
	return &NotificationService{
		repo:     repo,
		users:    users,
		wishlist: wishlist,
	}
}

// AddNotification inserts exactly one unread notification for userID.
// Unknown types are stored as "other".
func (s *NotificationService) AddNotification(ctx context.Context, userID string, typ models.NotificationType, title, message string, link *string) (*models.Notification, error) {
	if userID == "" {
		return nil, apperrors.Validation("recipient is required")
	}
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}
	n := &models.Notification{
		UserID:  userID,
		Type:    models.ParseNotificationType(string(typ)),
		Title:   title,
		Message: message,
		Link:    link,
		Read:    false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyUsers sends tmpl to every user in userIDs, one independent insert each.
// A failed insert is logged and skipped; it returns how many were delivered.
func (s *NotificationService) NotifyUsers(ctx context.Context, userIDs []string, tmpl Template) int {
	delivered := 0
	for _, id := range userIDs {
		if _, err := s.AddNotification(ctx, id, tmpl.Type, tmpl.Title, tmpl.Message, tmpl.Link); err != nil {
			logger.Warn().Err(err).Str("user_id", id).Str("type", string(tmpl.Type)).Msg("Notification not delivered")
			continue
		}
		delivered++
	}
	return delivered
}

// NotifyRole sends tmpl to every user holding role.
func (s *NotificationService) NotifyRole(ctx context.Context, role models.Role, tmpl Template) int {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		logger.Error().Err(err).Str("role", string(role)).Msg("Failed to list fan-out recipients")
		return 0
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return s.NotifyUsers(ctx, ids, tmpl)
}

// NotifyCategoryCreated tells admins and customers about a new category, each
// audience with its own copy.
func (s *NotificationService) NotifyCategoryCreated(ctx context.Context, category *models.Category) (admins, customers int) {
	admins = s.NotifyRole(ctx, models.RoleAdmin, Template{
		Type:    models.NotificationMessage,
		Title:   "New category created",
		Message: fmt.Sprintf("Category %q was added to the catalog.", category.Name),
		Link:    link("/admin/categories/%s", category.ID),
	})
	customers = s.NotifyRole(ctx, models.RoleCustomer, Template{
		Type:    models.NotificationStock,
		Title:   fmt.Sprintf("New collection: %s", category.Name),
		Message: fmt.Sprintf("Discover our new %s collection.", category.Name),
		Link:    link("/categories/%s", category.ID),
	})
	return admins, customers
}

// NotifyReviewCreated tells every admin about a new review.
func (s *NotificationService) NotifyReviewCreated(ctx context.Context, review *models.Review, productName string) int {
	return s.NotifyRole(ctx, models.RoleAdmin, Template{
		Type:    models.NotificationReview,
		Title:   "New review",
		Message: fmt.Sprintf("%s rated %s %d/5.", review.UserName, productName, review.Rating),
		Link:    link("/products/%s", review.ProductID),
	})
}

// NotifyOrderPlaced tells every admin about a new order.
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, order *models.Order) int {
	return s.NotifyRole(ctx, models.RoleAdmin, Template{
		Type:    models.NotificationOrder,
		Title:   "New order",
		Message: fmt.Sprintf("Order %s was placed for %.2f.", shortID(order.ID), order.Total),
		Link:    link("/admin/orders/%s", order.ID),
	})
}

// NotifyOrderStatusChanged tells the order owner about its new status.
func (s *NotificationService) NotifyOrderStatusChanged(ctx context.Context, order *models.Order) bool {
	message := fmt.Sprintf("Your order %s is now %s.", shortID(order.ID), order.Status)
	if order.Status == models.OrderStatusShipped && order.TrackingNumber != nil {
		message = fmt.Sprintf("Your order %s has shipped. Tracking number: %s.", shortID(order.ID), *order.TrackingNumber)
		if order.Carrier != nil {
			message = fmt.Sprintf("Your order %s has shipped with %s. Tracking number: %s.", shortID(order.ID), *order.Carrier, *order.TrackingNumber)
		}
	}
	return s.NotifyUsers(ctx, []string{order.UserID}, Template{
		Type:    models.NotificationOrderStatus,
		Title:   "Order update",
		Message: message,
		Link:    link("/orders/%s", order.ID),
	}) == 1
}

// NotifySignup welcomes a new user and tells the admins about them.
func (s *NotificationService) NotifySignup(ctx context.Context, user *models.User) int {
	delivered := s.NotifyUsers(ctx, []string{user.ID}, Template{
		Type:    models.NotificationWelcome,
		Title:   "Welcome!",
		Message: "Thanks for joining. Your wishlist and order history live in your account.",
		Link:    link("/account"),
	})
	if user.Role == models.RoleCustomer {
		delivered += s.NotifyRole(ctx, models.RoleAdmin, Template{
			Type:    models.NotificationSignup,
			Title:   "New customer",
			Message: fmt.Sprintf("%s (%s) created an account.", user.Name, user.Email),
			Link:    link("/admin/users/%s", user.ID),
		})
	}
	return delivered
}

// NotifyBackInStock tells everyone who saved product that it can be bought again.
func (s *NotificationService) NotifyBackInStock(ctx context.Context, product *models.Product) int {
	items, err := s.wishlist.GetByProductID(ctx, product.ID)
	if err != nil {
		logger.Error().Err(err).Str("product_id", product.ID).Msg("Failed to list wishlist recipients")
		return 0
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UserID)
	}
	return s.NotifyUsers(ctx, ids, Template{
		Type:    models.NotificationStock,
		Title:   "Back in stock",
		Message: fmt.Sprintf("%s is available again.", product.Name),
		Link:    link("/products/%s", product.ID),
	})
}

// GetUserNotifications returns the notifications of userID, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// CountUnread returns how many notifications of userID are unread.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkNotificationRead marks one notification of userID as read.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllNotificationsRead marks every notification of userID as read.
func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// DeleteNotification deletes one notification of userID.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// DeleteAllNotifications deletes every notification of userID.
func (s *NotificationService) DeleteAllNotifications(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAll(ctx, userID)
}

// shortID is the human-facing prefix of an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
