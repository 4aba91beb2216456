package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	pkgkafka "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/kafka"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, evt *pkgkafka.Event) error {
	args := m.Called(ctx, topic, evt)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishCartUpdated(t *testing.T) {
	pub := new(mockPublisher)
	producer := NewProducer(pub, discardLogger())

	ledger := domain.Apply(domain.Ledger{}, domain.AddItem{
		Product:  domain.Product{ID: "p1", VendorID: "v1", Price: 20},
		Quantity: 2,
	})
	totals := domain.DefaultPricingPolicy().Totals(ledger)

	var published *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { published = args.Get(2).(*pkgkafka.Event) }).
		Return(nil).Once()

	ctx := logger.WithCorrelationID(context.Background(), "req-1")
	require.NoError(t, producer.PublishCartUpdated(ctx, "profile-1", ledger, totals))
	pub.AssertExpectations(t)

	require.NotNil(t, published)
	assert.Equal(t, "profile-1", published.AggregateID)
	assert.Equal(t, "req-1", published.CorrelationID)

	var data CartUpdatedData
	require.NoError(t, published.UnmarshalData(&data))
	assert.Equal(t, 2, data.ItemCount)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "p1-default", data.Items[0].ID)
	assert.Equal(t, "69.99", data.Total.StringFixed(2))
}

func TestPublishCartCleared_WrapsPublishError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartCleared, mock.Anything).Return(errors.New("broker down"))

	err := NewProducer(pub, discardLogger()).PublishCartCleared(context.Background(), "profile-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish storefront.cart.cleared event")
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublishCartReconciled(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartReconciled, mock.Anything).Return(nil)

	err := NewProducer(pub, discardLogger()).PublishCartReconciled(context.Background(), CartReconciledData{
		ProfileID: "profile-1", UserID: "user-9", State: "done", Synced: 2, Skipped: 1,
	})
	require.NoError(t, err)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNopPublisher(t *testing.T) {
	err := NewProducer(NopPublisher{}, discardLogger()).PublishCartCleared(context.Background(), "p")
	assert.NoError(t, err)
}
