package listener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/customer"
	customerdto "github.com/fekuna/omnipos-order-service/internal/customer/dto"
	customerrepo "github.com/fekuna/omnipos-order-service/internal/customer/repository"
	customeruc "github.com/fekuna/omnipos-order-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-order-service/internal/metrics"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/notification"
	"github.com/fekuna/omnipos-order-service/internal/notification/dto"
	notificationrepo "github.com/fekuna/omnipos-order-service/internal/notification/repository"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/publisher"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	recipient notification.Recipient
	template  notification.Template
	data      notification.Data
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []call
}

func (n *recordingNotifier) Notify(_ context.Context, r notification.Recipient, t notification.Template, d notification.Data) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call{recipient: r, template: t, data: d})
}

func (n *recordingNotifier) snapshot() []call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]call(nil), n.calls...)
}

type queueReader struct {
	messages chan kafka.Message
}

func (q *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-q.messages:
		return m, nil
	}
}

type fixture struct {
	db        *sqlx.DB
	listener  *NotificationListener
	notifier  *recordingNotifier
	customers customer.UseCase
}

func setup(t *testing.T, reader MessageReader) *fixture {
	t.Helper()
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	customers := customeruc.NewCustomerUseCase(customerrepo.NewSQLRepository(db), logger.NewNop())
	notifier := &recordingNotifier{}
	return &fixture{
		db:        db,
		listener:  NewNotificationListener(reader, customers, notifier, logger.NewNop()),
		notifier:  notifier,
		customers: customers,
	}
}

func encode(t *testing.T, e order.Event) []byte {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return data
}

func event(typ order.EventType, customerID string) order.Event {
	return order.NewEvent(typ, &model.Order{
		BaseModel:  model.BaseModel{ID: "order-1"},
		CustomerID: customerID,
		Status:     model.OrderStatusPending,
		TotalPrice: decimal.RequireFromString("12.50"),
	})
}

func TestHandleMessage(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	_, err := f.customers.EnsureCustomer(ctx, &customerdto.EnsureCustomerInput{ID: "cust-1", Email: "amina@example.com", Name: "Amina"})
	require.NoError(t, err)

	f.listener.HandleMessage(ctx, encode(t, event(order.EventOrderPlaced, "cust-1")))

	_, err = f.customers.UpdatePhone(ctx, &customerdto.UpdatePhoneInput{ID: "cust-1", PhoneNumber: "+254700000001"})
	require.NoError(t, err)
	f.listener.HandleMessage(ctx, encode(t, event(order.EventOrderCancelled, "cust-1")))

	calls := f.notifier.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, notification.TemplateOrderPlaced, calls[0].template)
	assert.Equal(t, notification.Data{CustomerName: "Amina", OrderID: "order-1"}, calls[0].data)
	assert.Equal(t, notification.Recipient{UserID: "cust-1", Emails: []string{"amina@example.com"}}, calls[0].recipient)

	assert.Equal(t, notification.TemplateOrderCancelled, calls[1].template)
	assert.Equal(t, "+254700000001", calls[1].recipient.PhoneNumber)
}

func TestHandleMessage_Skips(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	f.listener.HandleMessage(ctx, []byte("{not json"))
	f.listener.HandleMessage(ctx, encode(t, event(order.EventType("order.shipped"), "cust-1")))
	f.listener.HandleMessage(ctx, encode(t, event(order.EventOrderApproved, "")))
	assert.Empty(t, f.notifier.snapshot())

	// an unknown customer still reaches the dispatcher, which has no channel for them
	f.listener.HandleMessage(ctx, encode(t, event(order.EventOrderApproved, "ghost")))
	calls := f.notifier.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, notification.Recipient{UserID: "ghost"}, calls[0].recipient)
	assert.Equal(t, "", calls[0].data.CustomerName)
}

func TestStart(t *testing.T) {
	reader := &queueReader{messages: make(chan kafka.Message, 2)}
	f := setup(t, reader)
	_, err := f.customers.EnsureCustomer(context.Background(), &customerdto.EnsureCustomerInput{ID: "cust-1", Email: "a@example.com"})
	require.NoError(t, err)

	reader.messages <- kafka.Message{Value: []byte("garbage")}
	reader.messages <- kafka.Message{Value: encode(t, event(order.EventOrderApproved, "cust-1"))}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.listener.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(f.notifier.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

type failingReader struct{}

func (failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("broker unavailable")
}

func TestStart_StopsWhileBackingOff(t *testing.T) {
	f := setup(t, failingReader{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.listener.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestDirectSink_DeliversThroughEmitter(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	_, err := f.customers.EnsureCustomer(ctx, &customerdto.EnsureCustomerInput{ID: "cust-1", Email: "amina@example.com", Name: "Amina"})
	require.NoError(t, err)

	registry, err := notification.NewRegistry("en")
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry(), "test")
	repo := notificationrepo.NewSQLRepository(f.db)
	sender := notification.NewLogSender(logger.NewNop())
	f.listener.notifier = notification.NewDispatcher(registry, sender, sender, repo, m, logger.NewNop())

	emitter := publisher.NewEmitter(DirectSink{Listener: f.listener}, 8, time.Second, m, logger.NewNop())
	emitter.Publish(ctx, event(order.EventOrderPlaced, "cust-1"))
	require.NoError(t, emitter.Close(ctx))

	records, total, err := repo.List(ctx, &dto.NotificationFilters{UserID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, model.ChannelEmail, records[0].Channel)
	assert.Equal(t, "Hello Amina, your order #order-1 has been placed successfully.", records[0].Message)
}
