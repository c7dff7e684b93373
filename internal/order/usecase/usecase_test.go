package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	invrepo "github.com/fekuna/omnipos-order-service/internal/inventory/repository"
	invusecase "github.com/fekuna/omnipos-order-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/internal/order/repository"
	prodrepo "github.com/fekuna/omnipos-order-service/internal/product/repository"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e order.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []order.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]order.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	uc    order.UseCase
	db    *sqlx.DB
	pub   *recordingPublisher
	catID string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newFixture(t, db)
}

func newFixture(t *testing.T, db *sqlx.DB) *fixture {
	t.Helper()
	catID := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`INSERT INTO categories (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`), catID, "Kitchen", now, now)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry(), "test")
	tx := database.NewTxManager(db)
	ledger := invusecase.NewInventoryUseCase(invrepo.NewSQLRepository(db), tx, m, logger.NewNop())
	pub := &recordingPublisher{}
	uc := NewOrderUseCase(repository.NewSQLRepository(db), prodrepo.NewSQLRepository(db), ledger, tx, pub, m, logger.NewNop())
	return &fixture{uc: uc, db: db, pub: pub, catID: catID}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) product(t *testing.T, price string, discount *decimal.Decimal, stock int) *model.Product {
	t.Helper()
	p, err := model.NewProduct("p", f.catID, dec(price), discount, stock)
	require.NoError(t, err)
	_, err = f.db.Exec(f.db.Rebind(`INSERT INTO products (id, name, category_id, price, stock, discount_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`), p.ID, p.Name, p.CategoryID, p.Price, p.Stock, p.DiscountPrice, p.CreatedAt, p.UpdatedAt)
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	var s int
	require.NoError(t, f.db.Get(&s, f.db.Rebind("SELECT stock FROM products WHERE id = ?"), id))
	return s
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func (f *fixture) place(t *testing.T, lines ...dto.LineInput) *model.Order {
	t.Helper()
	o, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{CustomerID: "cust-1", Lines: lines})
	require.NoError(t, err)
	return o
}

func TestPlaceOrder(t *testing.T) {
	f := setup(t)
	discount := dec("7.50")
	a := f.product(t, "19.99", nil, 10)
	b := f.product(t, "10", &discount, 1)

	o := f.place(t, dto.LineInput{ProductID: a.ID, Quantity: 3}, dto.LineInput{ProductID: b.ID, Quantity: 1})

	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "cust-1", o.CustomerID)
	assert.Equal(t, "67.47", o.TotalPrice.StringFixed(2))
	require.Len(t, o.Items, 2)

	stored, err := f.uc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(dec("67.47")))
	assert.True(t, stored.TotalPrice.Equal(stored.ItemsTotal()))
	byProduct := map[string]model.OrderItem{}
	for _, it := range stored.Items {
		byProduct[it.ProductID] = it
	}
	assert.True(t, byProduct[a.ID].PriceAtTimeOfOrder.Equal(dec("19.99")))
	assert.True(t, byProduct[b.ID].PriceAtTimeOfOrder.Equal(dec("7.50")))

	// placing an order does not reserve stock
	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))
	assert.Equal(t, 0, f.count(t, "stock_movements"))
	assert.Equal(t, []order.EventType{order.EventOrderPlaced}, f.pub.types())
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := setup(t)
	p := f.product(t, "5", nil, 10)

	tests := []struct {
		name   string
		input  *dto.PlaceOrderInput
		fields []string
	}{
		{"no customer", &dto.PlaceOrderInput{Lines: []dto.LineInput{{ProductID: p.ID, Quantity: 1}}}, []string{"customer_id"}},
		{"no lines", &dto.PlaceOrderInput{CustomerID: "c"}, []string{"lines"}},
		{"duplicate product", &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
			{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 2},
		}}, []string{"product_id"}},
		{"non-positive quantities", &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
			{ProductID: p.ID, Quantity: 0}, {ProductID: "other", Quantity: -1},
		}}, []string{"quantity", "quantity"}},
		{"quantity beyond column range", &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
			{ProductID: p.ID, Quantity: maxLineQuantity + 1},
		}}, []string{"quantity"}},
		{"empty product id", &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{{Quantity: 1}}}, []string{"product_id"}},
		{"missing products", &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
			{ProductID: "ghost-1", Quantity: 1}, {ProductID: p.ID, Quantity: 1}, {ProductID: "ghost-2", Quantity: 1},
		}}, []string{"product_id", "product_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := f.uc.PlaceOrder(context.Background(), tt.input)
			assert.Nil(t, o)

			var verr *apperror.ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, len(verr.Issues))
			for i, is := range verr.Issues {
				fields[i] = is.Field
			}
			assert.Equal(t, tt.fields, fields)
		})
	}

	assert.Equal(t, 0, f.count(t, "orders"))
	assert.Empty(t, f.pub.types())
}

func TestPlaceOrder_RejectsTotalBeyondMoneyRange(t *testing.T) {
	f := setup(t)
	p := f.product(t, "9999999", nil, 5000)

	_, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
		{ProductID: p.ID, Quantity: 2000},
	}})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "lines", verr.Issues[0].Field)
	assert.Equal(t, 0, f.count(t, "orders"))
	assert.Empty(t, f.pub.types())
}

func TestPlaceOrder_ReportsEveryShortage(t *testing.T) {
	f := setup(t)
	a := f.product(t, "5", nil, 1)
	b := f.product(t, "5", nil, 0)
	c := f.product(t, "5", nil, 9)

	_, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{CustomerID: "c", Lines: []dto.LineInput{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
		{ProductID: c.ID, Quantity: 9},
	}})

	var serr *apperror.StockError
	require.ErrorAs(t, err, &serr)
	assert.ElementsMatch(t, []apperror.Shortage{
		{ProductID: a.ID, Requested: 2, Available: 1},
		{ProductID: b.ID, Requested: 1, Available: 0},
	}, serr.Shortages)
	assert.Equal(t, 0, f.count(t, "orders"))
	assert.Equal(t, 0, f.count(t, "order_items"))
}

func TestApproveOrder(t *testing.T) {
	f := setup(t)
	a := f.product(t, "3", nil, 5)
	b := f.product(t, "4", nil, 2)
	o := f.place(t, dto.LineInput{ProductID: a.ID, Quantity: 4}, dto.LineInput{ProductID: b.ID, Quantity: 2})

	approved, err := f.uc.ApproveOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, approved.Status)

	assert.Equal(t, 1, f.stock(t, a.ID))
	assert.Equal(t, 0, f.stock(t, b.ID))
	assert.Equal(t, 2, f.count(t, "stock_movements"))

	var refs []string
	require.NoError(t, f.db.Select(&refs, "SELECT reference_id FROM stock_movements WHERE reference_type = 'order'"))
	assert.Equal(t, []string{o.ID, o.ID}, refs)

	assert.Equal(t, []order.EventType{order.EventOrderPlaced, order.EventOrderApproved}, f.pub.types())
	assert.Equal(t, model.OrderStatusCompleted, f.pub.events[1].Status)
}

func TestApproveOrder_InsufficientStockChangesNothing(t *testing.T) {
	f := setup(t)
	a := f.product(t, "3", nil, 5)
	b := f.product(t, "3", nil, 5)
	o := f.place(t, dto.LineInput{ProductID: a.ID, Quantity: 2}, dto.LineInput{ProductID: b.ID, Quantity: 5})

	_, err := f.db.Exec("UPDATE products SET stock = 4 WHERE id = ?", b.ID)
	require.NoError(t, err)

	_, err = f.uc.ApproveOrder(context.Background(), o.ID)
	var serr *apperror.StockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, []apperror.Shortage{{ProductID: b.ID, Requested: 5, Available: 4}}, serr.Shortages)

	stored, err := f.uc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
	assert.Equal(t, 5, f.stock(t, a.ID))
	assert.Equal(t, 4, f.stock(t, b.ID))
	assert.Equal(t, 0, f.count(t, "stock_movements"))
	assert.Equal(t, []order.EventType{order.EventOrderPlaced}, f.pub.types())
}

// SQLite runs on a single connection, so here the approvals are serialized by the
// pool. The row-lock path is exercised against Postgres in usecase_postgres_test.go.
func TestApproveOrder_ConcurrentApprovalsNeverOversell(t *testing.T) {
	assertConcurrentApprovalsNeverOversell(t, setup(t))
}

func assertConcurrentApprovalsNeverOversell(t *testing.T, f *fixture) {
	t.Helper()
	p := f.product(t, "1", nil, 5)
	first := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 4})
	second := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 2})

	ids := []string{first.ID, second.ID}
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			_, errs[i] = f.uc.ApproveOrder(context.Background(), id)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	stock := f.stock(t, p.ID)
	assert.GreaterOrEqual(t, stock, 0)
	assert.Contains(t, []int{1, 3}, stock)

	var movements int
	require.NoError(t, f.db.Get(&movements, f.db.Rebind("SELECT COUNT(*) FROM stock_movements WHERE product_id = ?"), p.ID))
	assert.Equal(t, 1, movements)
}

func TestPriceSnapshotSurvivesCatalogChanges(t *testing.T) {
	f := setup(t)
	p := f.product(t, "10", nil, 5)
	o := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 2})

	_, err := f.db.Exec("UPDATE products SET price = ?, discount_price = ? WHERE id = ?", dec("99.00"), dec("50.00"), p.ID)
	require.NoError(t, err)

	approved, err := f.uc.ApproveOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, approved.TotalPrice.Equal(dec("20")))
	require.Len(t, approved.Items, 1)
	assert.True(t, approved.Items[0].PriceAtTimeOfOrder.Equal(dec("10")))

	stored, err := f.uc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(dec("20")))
}

func TestCancelOrder(t *testing.T) {
	f := setup(t)
	p := f.product(t, "10", nil, 5)
	o := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 3})

	cancelled, err := f.uc.CancelOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Equal(t, 0, f.count(t, "stock_movements"))
	assert.Equal(t, []order.EventType{order.EventOrderPlaced, order.EventOrderCancelled}, f.pub.types())
}

func TestTerminalOrdersRejectTransitions(t *testing.T) {
	f := setup(t)
	p := f.product(t, "10", nil, 5)
	completed := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 1})
	cancelled := f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 1})
	_, err := f.uc.ApproveOrder(context.Background(), completed.ID)
	require.NoError(t, err)
	_, err = f.uc.CancelOrder(context.Background(), cancelled.ID)
	require.NoError(t, err)
	events := len(f.pub.types())

	tests := []struct {
		name   string
		id     string
		status model.OrderStatus
		call   func(context.Context, string) (*model.Order, error)
		action string
	}{
		{"approve completed", completed.ID, model.OrderStatusCompleted, f.uc.ApproveOrder, "approve"},
		{"cancel completed", completed.ID, model.OrderStatusCompleted, f.uc.CancelOrder, "cancel"},
		{"approve cancelled", cancelled.ID, model.OrderStatusCancelled, f.uc.ApproveOrder, "approve"},
		{"cancel cancelled", cancelled.ID, model.OrderStatusCancelled, f.uc.CancelOrder, "cancel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call(context.Background(), tt.id)

			var terr *apperror.TransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.id, terr.OrderID)
			assert.Equal(t, string(tt.status), terr.From)
			assert.Equal(t, tt.action, terr.Action)

			stored, err := f.uc.GetOrder(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
		})
	}

	assert.Equal(t, 4, f.stock(t, p.ID))
	assert.Len(t, f.pub.types(), events)
}

func TestUnknownOrder(t *testing.T) {
	f := setup(t)

	_, err := f.uc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.uc.ApproveOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.uc.CancelOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.pub.types())
}

func TestListOrders(t *testing.T) {
	f := setup(t)
	p := f.product(t, "10", nil, 50)
	for i := 0; i < 3; i++ {
		f.place(t, dto.LineInput{ProductID: p.ID, Quantity: 1})
	}
	other, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{
		CustomerID: "cust-2",
		Lines:      []dto.LineInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = f.uc.CancelOrder(context.Background(), other.ID)
	require.NoError(t, err)

	orders, total, err := f.uc.ListOrders(context.Background(), &dto.OrderFilters{CustomerID: "cust-1", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, "cust-1", o.CustomerID)
		assert.Len(t, o.Items, 1)
	}

	orders, total, err = f.uc.ListOrders(context.Background(), &dto.OrderFilters{Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, other.ID, orders[0].ID)

	_, _, err = f.uc.ListOrders(context.Background(), &dto.OrderFilters{Status: "shipped"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
