package services

import (
	"context"
	"errors"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orders        repositories.OrderRepository
	carts         repositories.CartRepository
	notifications *NotificationService
	publisher     EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orders repositories.OrderRepository, carts repositories.CartRepository, notifications *NotificationService, publisher EventPublisher) *OrderService {
	return &OrderService{
		orders:        orders,
		carts:         carts,
		notifications: notifications,
		publisher:     publisher,
	}
}

// orderEvent is the payload of order.* events.
type orderEvent struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	Status    models.OrderStatus `json:"status"`
	Total     float64            `json:"total"`
	Timestamp time.Time          `json:"timestamp"`
}

func newOrderEvent(order *models.Order) orderEvent {
	return orderEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: time.Now().UTC(),
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetOrderForUser retrieves an order on behalf of actor. Customers may only read
// their own orders.
func (s *OrderService) GetOrderForUser(ctx context.Context, id string, actor *models.User) (*models.Order, error) {
	if actor == nil {
		return nil, apperrors.Authorization("sign in to view orders")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, apperrors.Authorization("order %s belongs to another user", id)
	}
	return order, nil
}

// GetUserOrders retrieves the orders of userID, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.GetByUserID(ctx, userID)
}

// CreateOrder turns the cart of userID into a pending order and clears the cart.
//
// The total is computed from the cart lines and never taken from the caller. The
// item list is copied so later catalog edits cannot change the order. The order
// insert and the cart delete are separate writes: if the delete fails the order
// stands and the cart is left for the user to clear.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, shipping models.ShippingInfo) (*models.Order, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	if err := validateStruct(shipping); err != nil {
		return nil, err
	}

	items := snapshotItems(cart.Items)
	order := &models.Order{
		UserID:   userID,
		Items:    items,
		Total:    orderTotal(items),
		Status:   models.OrderStatusPending,
		Shipping: shipping,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.carts.DeleteByUserID(ctx, userID); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Str("user_id", userID).Msg("Order created but cart not cleared")
	}

	s.notifications.NotifyOrderPlaced(ctx, order)
	publishEvent(ctx, s.publisher, "order.created", newOrderEvent(order))

	logger.Info().Str("order_id", order.ID).Str("user_id", userID).Float64("total", order.Total).Msg("Order created")
	return order, nil
}

// UpdateOrderStatus moves an order along the fulfillment state machine.
// Tracking number and carrier are stored only with the shipped status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, trackingNumber, carrier *string) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("unknown order status %q", status)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperrors.InvalidTransition(string(order.Status), string(status))
	}

	if status != models.OrderStatusShipped {
		trackingNumber, carrier = nil, nil
	}
	err = s.orders.UpdateStatus(ctx, id, order.Status, status, trackingNumber, carrier)
	if errors.Is(err, repositories.ErrStaleWrite) {
		// Someone else moved the order after we read it.
		return nil, apperrors.InvalidTransition(string(order.Status)+" (changed concurrently)", string(status))
	}
	if err != nil {
		return nil, err
	}

	order.Status = status
	if trackingNumber != nil {
		order.TrackingNumber = trackingNumber
	}
	if carrier != nil {
		order.Carrier = carrier
	}

	s.notifications.NotifyOrderStatusChanged(ctx, order)
	publishEvent(ctx, s.publisher, "order.status_changed", newOrderEvent(order))
	return order, nil
}

// CancelOrder cancels an order on behalf of actor. Customers may cancel their own
// orders while they are pending; admins may cancel wherever the state machine allows.
func (s *OrderService) CancelOrder(ctx context.Context, id string, actor *models.User) (*models.Order, error) {
	order, err := s.GetOrderForUser(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.Status != models.OrderStatusPending {
		return nil, apperrors.Authorization("only pending orders can be cancelled by the customer")
	}
	return s.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled, nil, nil)
}

// snapshotItems deep-copies cart lines into order lines.
func snapshotItems(cartItems []models.CartItem) datatypes.JSONSlice[models.OrderItem] {
	items := make(datatypes.JSONSlice[models.OrderItem], 0, len(cartItems))
	for _, ci := range cartItems {
		items = append(items, models.OrderItem{
			ProductID: ci.ProductID,
			Name:      ci.Name,
			Quantity:  ci.Quantity,
			Price:     ci.Price,
			ImageURL:  ci.ImageURL,
		})
	}
	return items
}

// orderTotal sums price × quantity in decimal and rounds to cents.
func orderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}
