package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/models"
	"github.com/dukapos/go-api/pkg/pricing"
)

// ErrPaymentExceedsBalance is returned when an installment is larger than
// what is still owed on the order.
var ErrPaymentExceedsBalance = errors.New("payment exceeds remaining balance")

// OrderStore records checkouts in MongoDB. It satisfies the order-creation
// contract the checkout orchestrator depends on.
type OrderStore struct{}

// CreateOrder writes the order, its item snapshots, and its payments, then
// decrements on-hand stock for each line. Inserts are sequential; on a
// partial failure the order row exists without children and the caller
// sees the error.
func (OrderStore) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResult, error) {
	var paidAmount float64
	for _, p := range req.Payments {
		paidAmount += p.Amount
	}

	order := &models.Order{
		ID:             bson.NewObjectID(),
		OrderNumber:    models.GenerateOrderNumber(),
		CustomerID:     req.CustomerID,
		LocationID:     req.LocationID,
		Status:         models.OrderStatusCompleted,
		PaymentStatus:  models.PaymentStatusPaid,
		Subtotal:       req.Subtotal,
		DiscountAmount: req.Discount,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.Total,
		PaidAmount:     paidAmount,
		ChangeAmount:   req.ChangeAmount,
		DiscountCode:   req.DiscountCode,
		Notes:          req.Notes,
		StaffID:        req.StaffID,
	}
	if req.IsLayaway && req.Layaway != nil {
		order.Status = models.OrderStatusLayaway
		order.PaymentStatus = models.PaymentStatusPartial
		order.LayawayCustomerName = req.Layaway.CustomerName
		order.LayawayCustomerPhone = req.Layaway.CustomerPhone
		order.LayawayDepositPct = req.Layaway.DepositPercent
		dueDate := req.Layaway.DueDate
		order.LayawayDueDate = &dueDate
	} else {
		now := time.Now()
		order.CompletedAt = &now
	}
	order.SetTimestamps()

	if _, err := GetCollection("orders").InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems, err := insertOrderItems(ctx, order, req)
	if err != nil {
		return nil, err
	}

	payments, err := insertPayments(ctx, order.ID, req.Payments)
	if err != nil {
		return nil, err
	}

	reduceStockForSale(ctx, order, req.Items)

	return &models.CreateOrderResult{
		Order:      order,
		OrderItems: orderItems,
		Payments:   payments,
	}, nil
}

func insertOrderItems(ctx context.Context, order *models.Order, req *models.CreateOrderRequest) ([]models.OrderItem, error) {
	var itemDiscountTotal float64
	for i := range req.Items {
		itemDiscountTotal += req.Items[i].ItemDiscount
	}
	orderDiscount := req.Discount - itemDiscountTotal
	if orderDiscount < 0 {
		orderDiscount = 0
	}

	orderItems := make([]models.OrderItem, len(req.Items))
	docs := make([]interface{}, len(req.Items))
	for i := range req.Items {
		item := &req.Items[i]

		var share float64
		if req.Subtotal > 0 {
			share = (orderDiscount / req.Subtotal) * item.Subtotal()
		}

		orderItems[i] = models.OrderItem{
			ID:             bson.NewObjectID(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			ProductName:    item.Name,
			VariantName:    item.VariantName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			CostPrice:      item.CostPrice,
			DiscountAmount: item.ItemDiscount,
			TaxAmount:      pricing.ItemTax(item.UnitPrice, item.Quantity, item.TaxRate, item.ItemDiscount, share),
			TotalAmount:    item.Total(),
		}
		docs[i] = orderItems[i]
	}

	if _, err := GetCollection("order_items").InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	return orderItems, nil
}

func insertPayments(ctx context.Context, orderID bson.ObjectID, inputs []models.PaymentInput) ([]models.Payment, error) {
	now := time.Now()
	payments := make([]models.Payment, len(inputs))
	docs := make([]interface{}, len(inputs))
	for i, input := range inputs {
		payments[i] = models.Payment{
			ID:              bson.NewObjectID(),
			OrderID:         orderID,
			PaymentMethod:   input.Method,
			Amount:          input.Amount,
			ReferenceNumber: input.ReferenceNumber,
			MpesaReceipt:    input.MpesaReceipt,
			MpesaPhone:      input.MpesaPhone,
			Status:          "completed",
			ProcessedAt:     &now,
			CreatedAt:       now,
		}
		docs[i] = payments[i]
	}

	if _, err := GetCollection("payments").InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to create payments: %w", err)
	}
	return payments, nil
}

// reduceStockForSale appends sale movements and decrements on-hand counts.
// Lines without an inventory row (untracked products) are skipped. Failures
// here are logged rather than failing the order: the sale is already
// recorded and the count can be corrected with an adjustment.
func reduceStockForSale(ctx context.Context, order *models.Order, items []models.LineItem) {
	movements := GetCollection("stock_movements")
	inventory := GetCollection("inventory")

	for i := range items {
		item := &items[i]

		movement := models.StockMovement{
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			LocationID:    order.LocationID,
			MovementType:  models.MovementTypeSale,
			Quantity:      -item.Quantity,
			ReferenceType: "order",
			ReferenceID:   order.ID.Hex(),
			PerformedBy:   order.StaffID,
		}
		movement.SetTimestamp()
		if _, err := movements.InsertOne(ctx, movement); err != nil {
			log.Printf("Warning: failed to record sale movement for %s: %v", item.SKU, err)
			continue
		}

		filter := bson.D{
			{Key: "location_id", Value: order.LocationID},
		}
		if item.IsVariant() {
			filter = append(filter, bson.E{Key: "variant_id", Value: item.VariantID})
		} else {
			filter = append(filter, bson.E{Key: "product_id", Value: item.ProductID})
		}

		update := bson.M{
			"$inc": bson.M{"quantity": -item.Quantity},
			"$set": bson.M{"updated_at": time.Now()},
		}
		if _, err := inventory.UpdateOne(ctx, filter, update); err != nil {
			log.Printf("Warning: failed to reduce stock for %s: %v", item.SKU, err)
		}
	}
}

// GetOrders lists orders, optionally filtered by status, newest first.
func GetOrders(statusFilter string) ([]models.Order, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("orders")

	filter := bson.D{}
	if statusFilter != "" {
		filter = append(filter, bson.E{Key: "status", Value: statusFilter})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderPayments lists the payments recorded against one order.
func GetOrderPayments(orderID bson.ObjectID) ([]models.Payment, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	collection := GetCollection("payments")

	cursor, err := collection.Find(ctx, bson.D{{Key: "order_id", Value: orderID}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// AddOrderPayment records an additional payment against a layaway order,
// recomputes the paid amount, and completes the order once payments reach
// the total.
func AddOrderPayment(orderID bson.ObjectID, amount float64, method string) (*models.Payment, error) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	orders := GetCollection("orders")

	var current models.Order
	if err := orders.FindOne(ctx, bson.D{{Key: "_id", Value: orderID}}).Decode(&current); err != nil {
		return nil, err
	}
	if !current.CanAcceptPayment(amount) {
		return nil, fmt.Errorf("%w: %.2f owed, %.2f tendered", ErrPaymentExceedsBalance, current.Balance(), amount)
	}

	now := time.Now()
	payment := models.Payment{
		ID:            bson.NewObjectID(),
		OrderID:       orderID,
		PaymentMethod: method,
		Amount:        amount,
		Status:        "completed",
		ProcessedAt:   &now,
		CreatedAt:     now,
	}
	if _, err := GetCollection("payments").InsertOne(ctx, &payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var order models.Order
	err := orders.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: orderID}},
		bson.M{
			"$inc": bson.M{"paid_amount": amount},
			"$set": bson.M{"updated_at": now},
		},
		opts,
	).Decode(&order)
	if err != nil {
		return nil, fmt.Errorf("failed to update order balance: %w", err)
	}

	if order.IsPaid() && order.Status == models.OrderStatusLayaway {
		_, err = orders.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: orderID}},
			bson.M{"$set": bson.M{
				"status":         models.OrderStatusCompleted,
				"payment_status": models.PaymentStatusPaid,
				"completed_at":   now,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to complete order: %w", err)
		}
	}

	return &payment, nil
}
