package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dukapos/go-api/pkg/cart"
	"github.com/dukapos/go-api/pkg/models"
)

// mockOrderCreator implements OrderCreator for testing
type mockOrderCreator struct {
	LastRequest *models.CreateOrderRequest
	Err         error
	Block       chan struct{} // when set, CreateOrder waits until closed
}

func (m *mockOrderCreator) CreateOrder(_ context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResult, error) {
	m.LastRequest = req
	if m.Block != nil {
		<-m.Block
	}
	if m.Err != nil {
		return nil, m.Err
	}
	order := &models.Order{
		ID:          bson.NewObjectID(),
		OrderNumber: models.GenerateOrderNumber(),
		TotalAmount: req.Total,
	}
	return &models.CreateOrderResult{Order: order}, nil
}

type memStore struct {
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (m *memStore) Get(key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", cart.ErrNotFound
	}
	return v, nil
}
func (m *memStore) Set(key, value string) error { m.data[key] = value; return nil }
func (m *memStore) Remove(key string) error     { delete(m.data, key); return nil }

type fakeSaleable struct {
	id      string
	price   float64
	taxRate float64
}

func (f fakeSaleable) SaleableID() string      { return f.id }
func (f fakeSaleable) ParentProductID() string { return "" }
func (f fakeSaleable) DisplayName() string     { return "Item " + f.id }
func (f fakeSaleable) SaleSKU() string         { return "SKU-" + f.id }
func (f fakeSaleable) SaleBarcode() string     { return "" }
func (f fakeSaleable) UnitPrice() float64      { return f.price }
func (f fakeSaleable) UnitCost() float64       { return f.price / 2 }
func (f fakeSaleable) SaleTaxRate() float64    { return f.taxRate }
func (f fakeSaleable) SaleImageURL() string    { return "" }

// cartWithTotal builds a cart whose total is exactly the given amount
// (single line, no tax, no discounts).
func cartWithTotal(t *testing.T, total float64) *cart.Cart {
	t.Helper()
	c := cart.New(newMemStore(), "loc-main")
	require.NoError(t, c.AddItem(fakeSaleable{id: "p1", price: total}, 1, 0))
	require.InDelta(t, total, c.Totals().Total, 1e-9)
	return c
}

func cashPayment(amount float64) models.PaymentInput {
	return models.PaymentInput{Method: models.PaymentMethodCash, Amount: amount}
}

func TestCheckout_CashExactTender(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	res, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(500)}})

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Change)
	assert.Equal(t, 500.0, res.AmountPaid)
	assert.Equal(t, 5, res.LoyaltyPoints)
	require.Len(t, creator.LastRequest.Payments, 1)
	assert.Equal(t, 500.0, creator.LastRequest.Payments[0].Amount)
	assert.True(t, c.IsEmpty(), "cart cleared after successful checkout")
}

func TestCheckout_CashOverTenderRecordsTotalNotTendered(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	res, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(600)}})

	require.NoError(t, err)
	assert.InDelta(t, 100, res.Change, 1e-9)
	// the stored cash payment is the order total, change is display-only
	assert.InDelta(t, 500, creator.LastRequest.Payments[0].Amount, 1e-9)
}

func TestCheckout_InsufficientCashFailsAndKeepsCart(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	res, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(400)}})

	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Nil(t, res)
	assert.Nil(t, creator.LastRequest, "no submit on validation failure")
	assert.False(t, c.IsEmpty())
}

func TestCheckout_SplitPayment(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	payments := []models.PaymentInput{
		cashPayment(250),
		{Method: models.PaymentMethodMpesa, Amount: 250, MpesaReceipt: "QX12"},
	}
	res, err := o.Checkout(context.Background(), Request{Payments: payments})

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Change)
	require.Len(t, creator.LastRequest.Payments, 2)
}

func TestCheckout_SplitShortfallFails(t *testing.T) {
	c := cartWithTotal(t, 500)
	o := New(c, &mockOrderCreator{}, 100)

	payments := []models.PaymentInput{
		cashPayment(200),
		{Method: models.PaymentMethodMpesa, Amount: 200},
	}
	_, err := o.Checkout(context.Background(), Request{Payments: payments})

	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestCheckout_NegativePaymentLineFails(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	// the sum covers the total, but one line is negative
	payments := []models.PaymentInput{
		cashPayment(-100),
		cashPayment(600),
	}
	_, err := o.Checkout(context.Background(), Request{Payments: payments})

	assert.ErrorIs(t, err, ErrInvalidPayment)
	assert.Nil(t, creator.LastRequest, "no submit on validation failure")
	assert.False(t, c.IsEmpty())
}

func TestCheckout_ZeroPaymentLineFails(t *testing.T) {
	c := cartWithTotal(t, 500)
	o := New(c, &mockOrderCreator{}, 100)

	payments := []models.PaymentInput{
		cashPayment(0),
		{Method: models.PaymentMethodCard, Amount: 500},
	}
	_, err := o.Checkout(context.Background(), Request{Payments: payments})

	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCheckout_RecordsChangeOnOrder(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(600)}})

	require.NoError(t, err)
	assert.InDelta(t, 100, creator.LastRequest.ChangeAmount, 1e-9)
}

func TestCheckout_LayawayRecordsNoChange(t *testing.T) {
	c := cartWithTotal(t, 1000)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	_, err := o.Checkout(context.Background(), Request{
		Payments:      []models.PaymentInput{cashPayment(200)},
		IsLayaway:     true,
		CustomerName:  "Achieng O.",
		CustomerPhone: "0712345678",
	})

	require.NoError(t, err)
	assert.Equal(t, 0.0, creator.LastRequest.ChangeAmount)
}

func TestCheckout_FloatToleranceAccepted(t *testing.T) {
	c := cartWithTotal(t, 500)
	o := New(c, &mockOrderCreator{}, 100)

	_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(499.995)}})
	assert.NoError(t, err)
}

func TestCheckout_Layaway(t *testing.T) {
	c := cartWithTotal(t, 1000)
	creator := &mockOrderCreator{}
	o := New(c, creator, 100)

	res, err := o.Checkout(context.Background(), Request{
		Payments:      []models.PaymentInput{cashPayment(200)},
		IsLayaway:     true,
		CustomerName:  "Achieng O.",
		CustomerPhone: "0712345678",
	})

	require.NoError(t, err)
	assert.InDelta(t, 800, res.Balance, 1e-9)
	assert.Equal(t, 2, res.LoyaltyPoints) // proportional to the 20% paid

	req := creator.LastRequest
	require.NotNil(t, req.Layaway)
	assert.InDelta(t, 20, req.Layaway.DepositPercent, 1e-9)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, LayawayDueDays), req.Layaway.DueDate, time.Minute)
	// deposit recorded as tendered, not topped up to the total
	assert.InDelta(t, 200, req.Payments[0].Amount, 1e-9)
	assert.True(t, c.IsEmpty())
}

func TestCheckout_LayawayRequiresDeposit(t *testing.T) {
	c := cartWithTotal(t, 1000)
	o := New(c, &mockOrderCreator{}, 100)

	_, err := o.Checkout(context.Background(), Request{
		Payments:      []models.PaymentInput{cashPayment(0)},
		IsLayaway:     true,
		CustomerName:  "Achieng O.",
		CustomerPhone: "0712345678",
	})
	assert.ErrorIs(t, err, ErrDepositRequired)
}

func TestCheckout_LayawayRequiresCustomerDetails(t *testing.T) {
	c := cartWithTotal(t, 1000)
	o := New(c, &mockOrderCreator{}, 100)

	_, err := o.Checkout(context.Background(), Request{
		Payments:  []models.PaymentInput{cashPayment(200)},
		IsLayaway: true,
	})
	assert.ErrorIs(t, err, ErrLayawayCustomerRequired)
}

func TestCheckout_LayawayWithAttachedCustomerSkipsContactCheck(t *testing.T) {
	c := cartWithTotal(t, 1000)
	c.SetCustomer("cust-1")
	o := New(c, &mockOrderCreator{}, 100)

	_, err := o.Checkout(context.Background(), Request{
		Payments:  []models.PaymentInput{cashPayment(200)},
		IsLayaway: true,
	})
	assert.NoError(t, err)
}

func TestCheckout_EmptyCart(t *testing.T) {
	c := cart.New(newMemStore(), "loc-main")
	o := New(c, &mockOrderCreator{}, 100)

	_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(10)}})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_CreatorFailureLeavesCartUntouched(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{Err: errors.New("connection reset")}
	o := New(c, creator, 100)

	_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(500)}})

	assert.Error(t, err)
	assert.False(t, c.IsEmpty())
	assert.InDelta(t, 500, c.Totals().Total, 1e-9)
}

func TestCheckout_BlocksDoubleSubmit(t *testing.T) {
	c := cartWithTotal(t, 500)
	creator := &mockOrderCreator{Block: make(chan struct{})}
	o := New(c, creator, 100)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(500)}})
		done <- err
	}()
	<-started
	time.Sleep(10 * time.Millisecond) // let the first call reach the creator

	_, err := o.Checkout(context.Background(), Request{Payments: []models.PaymentInput{cashPayment(500)}})
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(creator.Block)
	require.NoError(t, <-done)
}

func TestApplyManualDiscount(t *testing.T) {
	c := cartWithTotal(t, 500)
	o := New(c, &mockOrderCreator{}, 100)

	assert.ErrorIs(t, o.ApplyManualDiscount(-1), ErrInvalidDiscount)
	assert.ErrorIs(t, o.ApplyManualDiscount(501), ErrInvalidDiscount)

	require.NoError(t, o.ApplyManualDiscount(50))
	assert.InDelta(t, 50, c.Totals().OrderDiscount, 1e-9)
	assert.InDelta(t, 450, c.Totals().Total, 1e-9)
}
