package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/inventory"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/pricing"
	"github.com/fekuna/omnipos-order-service/internal/product"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Limits of the INTEGER quantity and NUMERIC(12,2) money columns.
const maxLineQuantity = math.MaxInt32

var maxOrderTotal = decimal.RequireFromString("9999999999.99")

type orderUseCase struct {
	repo      order.Repository
	products  product.Repository
	ledger    inventory.Ledger
	tx        *database.TxManager
	publisher order.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	products product.Repository,
	ledger inventory.Ledger,
	tx *database.TxManager,
	publisher order.Publisher,
	m *metrics.Metrics,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		products:  products,
		ledger:    ledger,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		tracer:    otel.Tracer("omnipos-order-service/order"),
		logger:    log,
	}
}

// PlaceOrder validates the request, snapshots prices and persists a pending order.
// Stock is checked but not reserved until approval.
func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (o *model.Order, err error) {
	started := time.Now()
	ctx, span := uc.tracer.Start(ctx, "order.PlaceOrder", trace.WithAttributes(
		attribute.String("customer.id", input.CustomerID),
		attribute.Int("order.lines", len(input.Lines)),
	))
	defer func() {
		uc.finish(span, "place", err, started)
	}()

	if err := validatePlacement(input); err != nil {
		return nil, err
	}

	ids := make([]string, len(input.Lines))
	for i, l := range input.Lines {
		ids[i] = l.ProductID
	}
	sort.Strings(ids)

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		products, err := uc.products.FindByIDs(ctx, ids, database.LockShare)
		if err != nil {
			return err
		}
		byID := make(map[string]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		missing := apperror.NewValidation()
		for _, l := range input.Lines {
			if _, ok := byID[l.ProductID]; !ok {
				missing.Add(apperror.Issue{Field: "product_id", ProductID: l.ProductID, Message: "product does not exist"})
			}
		}
		if err := missing.OrNil(); err != nil {
			return err
		}

		stockErr := &apperror.StockError{}
		for _, l := range input.Lines {
			p := byID[l.ProductID]
			if !uc.ledger.IsInStock(p, l.Quantity) {
				stockErr.Shortages = append(stockErr.Shortages, apperror.Shortage{
					ProductID: l.ProductID,
					Requested: l.Quantity,
					Available: p.Stock,
				})
			}
		}
		if len(stockErr.Shortages) > 0 {
			uc.metrics.ObserveShortages(len(stockErr.Shortages))
			return stockErr
		}

		now := time.Now().UTC()
		o = &model.Order{
			BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			CustomerID: input.CustomerID,
			Status:     model.OrderStatusPending,
			Items:      make([]model.OrderItem, 0, len(input.Lines)),
		}
		total := decimal.Zero
		for _, l := range input.Lines {
			unit := pricing.EffectivePrice(byID[l.ProductID])
			o.Items = append(o.Items, model.OrderItem{
				ID:                 uuid.New().String(),
				OrderID:            o.ID,
				ProductID:          l.ProductID,
				Quantity:           l.Quantity,
				PriceAtTimeOfOrder: unit,
			})
			total = total.Add(pricing.LineTotal(unit, l.Quantity))
		}
		if total.GreaterThan(maxOrderTotal) {
			return apperror.Validation("lines", "order total exceeds "+maxOrderTotal.StringFixed(2))
		}
		o.TotalPrice = total

		return uc.repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", o.ID), attribute.String("order.total", o.TotalPrice.String()))
	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("customer_id", o.CustomerID),
		zap.String("total_price", o.TotalPrice.StringFixed(2)),
	)
	uc.publisher.Publish(ctx, order.NewEvent(order.EventOrderPlaced, o))
	return o, nil
}

// ApproveOrder reserves stock for every item and completes the order, or changes nothing.
func (uc *orderUseCase) ApproveOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return uc.transition(ctx, "approve", orderID, order.ActionApprove, order.EventOrderApproved,
		func(ctx context.Context, o *model.Order) error {
			lines := make([]inventory.Line, len(o.Items))
			for i, it := range o.Items {
				lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity}
			}
			return uc.ledger.Reserve(ctx, lines, inventory.Reference{
				Type:  inventory.ReferenceOrder,
				ID:    o.ID,
				Notes: "order approved",
			})
		})
}

// CancelOrder cancels a pending order. No stock moves.
func (uc *orderUseCase) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return uc.transition(ctx, "cancel", orderID, order.ActionCancel, order.EventOrderCancelled, nil)
}

func (uc *orderUseCase) transition(
	ctx context.Context,
	operation, orderID string,
	action order.Action,
	eventType order.EventType,
	effect func(ctx context.Context, o *model.Order) error,
) (o *model.Order, err error) {
	started := time.Now()
	ctx, span := uc.tracer.Start(ctx, "order."+operation, trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.action", string(action)),
	))
	defer func() {
		uc.finish(span, operation, err, started)
	}()

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.repo.FindByID(ctx, orderID, database.LockUpdate)
		if err != nil {
			return err
		}

		to, ok := order.Transition(o.Status, action)
		if !ok {
			return &apperror.TransitionError{OrderID: o.ID, From: string(o.Status), Action: string(action)}
		}

		if effect != nil {
			if err := effect(ctx, o); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		updated, err := uc.repo.UpdateStatus(ctx, o.ID, o.Status, to, now)
		if err != nil {
			return err
		}
		if !updated {
			return &apperror.TransitionError{OrderID: o.ID, From: string(o.Status), Action: string(action)}
		}
		o.Status = to
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("action", string(action)),
		zap.String("status", string(o.Status)),
	)
	uc.publisher.Publish(ctx, order.NewEvent(eventType, o))
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return uc.repo.FindByID(ctx, orderID, database.LockNone)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("status", "unknown order status")
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) finish(span trace.Span, operation string, err error, started time.Time) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logger.Debug("order operation rejected", zap.String("operation", operation), zap.Error(err))
	}
	span.End()
	uc.metrics.ObserveOrderOperation(operation, err, started)
}

func validatePlacement(input *dto.PlaceOrderInput) error {
	verr := apperror.NewValidation()
	if input.CustomerID == "" {
		verr.Add(apperror.Issue{Field: "customer_id", Message: "customer is required"})
	}
	if len(input.Lines) == 0 {
		verr.Add(apperror.Issue{Field: "lines", Message: "at least one line is required"})
	}

	seen := make(map[string]bool, len(input.Lines))
	for _, l := range input.Lines {
		if l.ProductID == "" {
			verr.Add(apperror.Issue{Field: "product_id", Message: "product is required"})
			continue
		}
		if seen[l.ProductID] {
			verr.Add(apperror.Issue{Field: "product_id", ProductID: l.ProductID, Message: "duplicate product in order"})
		}
		seen[l.ProductID] = true
		switch {
		case l.Quantity <= 0:
			verr.Add(apperror.Issue{Field: "quantity", ProductID: l.ProductID, Message: "quantity must be positive"})
		case l.Quantity > maxLineQuantity:
			verr.Add(apperror.Issue{Field: "quantity", ProductID: l.ProductID, Message: "quantity is too large"})
		}
	}
	return verr.OrNil()
}
