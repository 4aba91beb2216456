package persistence

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository/memory"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error        { return f.err }
func (f failingStore) Ping(context.Context) error                  { return f.err }

func sampleLedger() domain.Ledger {
	l := domain.Apply(domain.Ledger{}, domain.AddItem{
		Product:  domain.Product{ID: "p1", VendorID: "v1", Name: "Mug", Price: 12.5},
		Quantity: 2,
	})
	l = domain.Apply(l, domain.AddItem{
		Product:  domain.Product{ID: "p2", VendorID: "v2", Price: 40, HasFreeShipping: true},
		Variant:  &domain.ProductVariant{ID: "blue", Price: 42},
		Quantity: 1,
	})
	return domain.Apply(l, domain.ApplyCoupon{Code: "SPRING"})
}

func TestAdapter_SaveLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(memory.NewLedgerStore(), testLogger(&buf))
	ctx := context.Background()

	want := sampleLedger()
	require.NoError(t, adapter.Save(ctx, "profile-1", want))

	got := adapter.Load(ctx, "profile-1")
	require.Len(t, got.Items, 2)
	assert.Equal(t, "p2-blue", got.Items[1].ID)
	assert.True(t, got.Items[0].Price.Equal(want.Items[0].Price))
	assert.Equal(t, "SPRING", got.Coupon())
	assert.Zero(t, buf.Len())
}

func TestAdapter_Save_PersistedLayout(t *testing.T) {
	store := memory.NewLedgerStore()
	adapter := NewAdapter(store, testLogger(&bytes.Buffer{}))
	ctx := context.Background()

	require.NoError(t, adapter.Save(ctx, "profile-1", domain.Ledger{}))

	raw, err := store.Get(ctx, "profile-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"coupon_code":null}`, string(raw))
}

func TestAdapter_Load_Missing(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(memory.NewLedgerStore(), testLogger(&buf))

	assert.True(t, adapter.Load(context.Background(), "new-visitor").IsEmpty())
	assert.Zero(t, buf.Len(), "a first visit is not worth a warning")
}

func TestAdapter_Load_CorruptPayloadsYieldEmpty(t *testing.T) {
	payloads := map[string]string{
		"not json":          `{"items": [`,
		"array":             `[1,2,3]`,
		"items not array":   `{"items": {"p1-default": 1}}`,
		"duplicate ids":     `{"items":[{"id":"a","product_id":"a","vendor_id":"v","quantity":1,"price":"1","shipping_type":"paid","shipping_cost":"29.99"},{"id":"a","product_id":"a","vendor_id":"v","quantity":1,"price":"1","shipping_type":"paid","shipping_cost":"29.99"}]}`,
		"zero quantity":     `{"items":[{"id":"a","product_id":"a","vendor_id":"v","quantity":0,"price":"1","shipping_type":"paid","shipping_cost":"29.99"}]}`,
		"old shape no type": `{"items":[{"id":"a","product_id":"a","vendor_id":"v","quantity":1,"price":1}]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			store := memory.NewLedgerStore()
			require.NoError(t, store.Put(context.Background(), "p", []byte(payload)))
			var buf bytes.Buffer

			got := NewAdapter(store, testLogger(&buf)).Load(context.Background(), "p")

			assert.True(t, got.IsEmpty())
			assert.Contains(t, buf.String(), "discarding unreadable ledger")
		})
	}
}

func TestAdapter_Load_StoreErrorYieldsEmpty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAdapter(failingStore{err: errors.New("connection refused")}, testLogger(&buf))

	assert.True(t, adapter.Load(context.Background(), "p").IsEmpty())
	assert.Contains(t, buf.String(), "connection refused")
}

func TestAdapter_SaveAndClear_PropagateStoreErrors(t *testing.T) {
	adapter := NewAdapter(failingStore{err: errors.New("disk full")}, testLogger(&bytes.Buffer{}))

	assert.ErrorContains(t, adapter.Save(context.Background(), "p", sampleLedger()), "disk full")
	assert.ErrorContains(t, adapter.Clear(context.Background(), "p"), "disk full")
}

func TestAdapter_Clear(t *testing.T) {
	store := memory.NewLedgerStore()
	adapter := NewAdapter(store, testLogger(&bytes.Buffer{}))
	ctx := context.Background()
	require.NoError(t, adapter.Save(ctx, "p", sampleLedger()))

	require.NoError(t, adapter.Clear(ctx, "p"))
	assert.Zero(t, store.Len())
	assert.True(t, adapter.Load(ctx, "p").IsEmpty())
}

func TestDecode_BlankCouponIsDropped(t *testing.T) {
	l, err := Decode([]byte(`{"items":[],"coupon_code":"  "}`))
	require.NoError(t, err)
	assert.Nil(t, l.CouponCode)
}
