package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/outbox"
)

// MaxItemQuantity caps the quantity of one order line.
const MaxItemQuantity = 10000

// Service exposes checkout and order management.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, requester Requester) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context, params ListParams) (*OrderPage, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput, actor Requester) (*OrderDTO, error)
}

type ServiceParams struct {
	Repo    Repository
	Tx      db.Transactor
	Cart    CartClearer
	Outbox  outbox.Emitter
	Config  config.OrderConfig
	Metrics orderMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      db.Transactor
	cart    CartClearer
	outbox  outbox.Emitter
	cfg     config.OrderConfig
	metrics orderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		cart:    params.Cart,
		outbox:  params.Outbox,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no order items")
	}
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	address := input.ShippingAddress.Normalize()
	if missing := address.Missing(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	if input.TotalPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price must not be negative")
	}
	if !models.FitsMoneyColumn(input.TotalPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price is too large")
	}
	if s.cfg.VerifyTotals {
		computed := sumItems(items)
		if !computed.Equal(input.TotalPrice.Round(2)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price does not match items").
				WithDetails(map[string]any{
					"expected": computed.StringFixed(2),
					"received": input.TotalPrice.StringFixed(2),
				})
		}
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: address,
		TotalPrice:      input.TotalPrice.Round(2),
		Status:          enums.OrderStatusProcessing,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)},
			Data:          placedEvent(created),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order event")
		}
		if err := s.cart.ClearInTx(ctx, tx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderPlaced()
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"user_id":  userID.String(),
			"items":    len(order.Items),
		})
		s.logg.Info(logCtx, "order placed")
	}

	return s.reload(ctx, order.ID)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, requester Requester) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return fromModels(rows), nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*OrderPage, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]any{"status": params.Status.String()})
	}
	list, err := s.repo.ListAll(ctx, params)
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderPage{Orders: fromModels(list.Orders), NextCursor: list.NextCursor}, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput, actor Requester) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"status": input.Status})
	}

	var previous enums.OrderStatus
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return mapLoadError(err)
		}
		previous = order.Status
		if s.cfg.ForwardOnlyStatus && !order.Status.CanAdvanceTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": next})
		}

		updates := map[string]any{}
		paidAt := order.PaidAt
		if input.MarkPaid && paidAt == nil {
			stamp := s.now().UTC()
			paidAt = &stamp
			updates["paid_at"] = stamp
		}
		if err := repo.UpdateStatus(ctx, orderID, next, updates); err != nil {
			return mapLoadError(err)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: outbox.OrderStatusChangedEvent{
				OrderID: orderID,
				UserID:  order.UserID,
				From:    order.Status,
				To:      next,
				PaidAt:  paidAt,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	if s.metrics != nil {
		s.metrics.IncStatusChange(next.String())
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"from":     previous.String(),
			"to":       next.String(),
		})
		s.logg.Info(logCtx, "order status updated")
	}

	return s.reload(ctx, orderID)
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(order), nil
}

func buildItems(inputs []OrderItemInput) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	problems := map[string]string{}
	for i, in := range inputs {
		key := fmt.Sprintf("items[%d]", i)
		name := strings.TrimSpace(in.Name)
		image := strings.TrimSpace(in.Image)
		switch {
		case in.ProductID == uuid.Nil:
			problems[key] = "product is required"
		case name == "":
			problems[key] = "name is required"
		case image == "":
			problems[key] = "image is required"
		case in.Price.IsNegative():
			problems[key] = "price must not be negative"
		case !models.FitsMoneyColumn(in.Price):
			problems[key] = "price is too large"
		case in.Quantity < 1:
			problems[key] = "quantity must be at least 1"
		case in.Quantity > MaxItemQuantity:
			problems[key] = fmt.Sprintf("quantity must be at most %d", MaxItemQuantity)
		}
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Name:      name,
			Price:     in.Price.Round(2),
			Quantity:  in.Quantity,
			Image:     image,
		})
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order items").WithDetails(problems)
	}
	return items, nil
}

func sumItems(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

func placedEvent(order *models.Order) outbox.OrderPlacedEvent {
	lines := make([]outbox.OrderPlacedLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, outbox.OrderPlacedLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return outbox.OrderPlacedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		Items:      lines,
	}
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
