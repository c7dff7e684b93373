package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/inventory"
	"github.com/fekuna/omnipos-order-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo    inventory.Repository
	tx      *database.TxManager
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, tx *database.TxManager, m *metrics.Metrics, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:    repo,
		tx:      tx,
		metrics: m,
		tracer:  otel.Tracer("omnipos-order-service/inventory"),
		logger:  log,
	}
}

func (uc *inventoryUseCase) IsInStock(p *model.Product, quantity int) bool {
	return p != nil && quantity > 0 && p.Stock >= quantity
}

func (uc *inventoryUseCase) Reserve(ctx context.Context, lines []inventory.Line, ref inventory.Reference) (err error) {
	if _, err := database.RequireTx(ctx); err != nil {
		return err
	}

	ctx, span := uc.tracer.Start(ctx, "inventory.Reserve", trace.WithAttributes(
		attribute.String("reference.type", string(ref.Type)),
		attribute.String("reference.id", ref.ID),
		attribute.Int("lines", len(lines)),
	))
	shortLines := 0
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		uc.metrics.ObserveReservation(err, shortLines)
	}()

	requested, err := mergeLines(lines)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	levels, err := uc.repo.LockStock(ctx, ids)
	if err != nil {
		return err
	}
	available := make(map[string]int, len(levels))
	for _, l := range levels {
		available[l.ProductID] = l.Stock
	}

	stockErr := &apperror.StockError{}
	for _, id := range ids {
		have, ok := available[id]
		if !ok {
			return apperror.NotFound("product", id)
		}
		if have < requested[id] {
			stockErr.Shortages = append(stockErr.Shortages, apperror.Shortage{
				ProductID: id,
				Requested: requested[id],
				Available: have,
			})
		}
	}
	if len(stockErr.Shortages) > 0 {
		shortLines = len(stockErr.Shortages)
		return stockErr
	}

	now := time.Now().UTC()
	for _, id := range ids {
		qty := requested[id]
		ok, err := uc.repo.ApplyDelta(ctx, id, -qty)
		if err != nil {
			return err
		}
		if !ok {
			shortLines = 1
			return &apperror.StockError{Shortages: []apperror.Shortage{{ProductID: id, Requested: qty, Available: available[id]}}}
		}
		if err := uc.repo.LogMovement(ctx, newMovement(id, -qty, available[id], ref, now)); err != nil {
			return err
		}
	}

	uc.logger.Debug("stock reserved",
		zap.String("reference_type", string(ref.Type)),
		zap.String("reference_id", ref.ID),
		zap.Int("products", len(ids)),
	)
	return nil
}

func (uc *inventoryUseCase) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		levels, err := uc.repo.LockStock(ctx, []string{productID})
		if err != nil {
			return err
		}
		if len(levels) == 0 {
			return apperror.NotFound("product", productID)
		}
		stock = levels[0].Stock
		return nil
	})
	return stock, err
}

// AdjustStock applies a manual correction in its own transaction and records it.
func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error) {
	if input.QuantityChange == 0 {
		return nil, apperror.Validation("quantity_change", "quantity change must not be zero")
	}

	var movement *model.StockMovement
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		levels, err := uc.repo.LockStock(ctx, []string{input.ProductID})
		if err != nil {
			return err
		}
		if len(levels) == 0 {
			return apperror.NotFound("product", input.ProductID)
		}
		before := levels[0].Stock

		if before+input.QuantityChange < 0 {
			return &apperror.StockError{Shortages: []apperror.Shortage{{
				ProductID: input.ProductID,
				Requested: -input.QuantityChange,
				Available: before,
			}}}
		}

		ok, err := uc.repo.ApplyDelta(ctx, input.ProductID, input.QuantityChange)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("product", input.ProductID)
		}

		movement = newMovement(input.ProductID, input.QuantityChange, before, inventory.Reference{
			Type:      inventory.ReferenceAdjustment,
			CreatedBy: input.UserID,
			Notes:     input.Reason,
		}, time.Now().UTC())
		return uc.repo.LogMovement(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveAdjustment()
	uc.logger.Info("stock adjusted",
		zap.String("product_id", input.ProductID),
		zap.Int("quantity_change", input.QuantityChange),
		zap.Int("quantity_after", movement.QuantityAfter),
	)
	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func mergeLines(lines []inventory.Line) (map[string]int, error) {
	if len(lines) == 0 {
		return nil, apperror.Validation("lines", "at least one line is required")
	}
	requested := make(map[string]int, len(lines))
	verr := apperror.NewValidation()
	for _, l := range lines {
		if l.Quantity <= 0 {
			verr.Add(apperror.Issue{Field: "quantity", ProductID: l.ProductID, Message: "quantity must be positive"})
			continue
		}
		requested[l.ProductID] += l.Quantity
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return requested, nil
}

func newMovement(productID string, change, before int, ref inventory.Reference, at time.Time) *model.StockMovement {
	m := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  before + change,
		ReferenceType:  string(ref.Type),
		Notes:          ref.Notes,
		CreatedAt:      at,
	}
	if ref.ID != "" {
		id := ref.ID
		m.ReferenceID = &id
	}
	if ref.CreatedBy != "" {
		by := ref.CreatedBy
		m.CreatedBy = &by
	}
	return m
}
