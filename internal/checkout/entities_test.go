package checkout

import (
	"testing"
	"time"
)

func TestNewOrder(t *testing.T) {
	// Arrange
	userID := "user-456"
	totalCents := int64(3000)

	// Act
	order := NewOrder(userID, totalCents)

	// Assert
	if order.ID == "" {
		t.Error("Expected ID to be generated")
	}
	if order.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID, order.UserID)
	}
	if order.TotalCents != totalCents {
		t.Errorf("Expected TotalCents %d, got %d", totalCents, order.TotalCents)
	}
	if order.Status != OrderStatusConfirmed {
		t.Errorf("Expected Status %s, got %s", OrderStatusConfirmed, order.Status)
	}
	if order.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	// Verify that CreatedAt is within a reasonable time range
	now := time.Now()
	if order.CreatedAt.After(now) || order.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestNewLineItem(t *testing.T) {
	// Arrange
	orderID := "order-123"
	productID := "product-789"
	position := 2
	quantity := 3
	unitPriceCents := int64(1000)

	// Act
	item := NewLineItem(orderID, productID, position, quantity, unitPriceCents)

	// Assert
	if item.ID == "" {
		t.Error("Expected ID to be generated")
	}
	if item.OrderID != orderID {
		t.Errorf("Expected OrderID %s, got %s", orderID, item.OrderID)
	}
	if item.ProductID != productID {
		t.Errorf("Expected ProductID %s, got %s", productID, item.ProductID)
	}
	if item.Position != position {
		t.Errorf("Expected Position %d, got %d", position, item.Position)
	}
	if item.Quantity != quantity {
		t.Errorf("Expected Quantity %d, got %d", quantity, item.Quantity)
	}
	if item.UnitPriceCents != unitPriceCents {
		t.Errorf("Expected UnitPriceCents %d, got %d", unitPriceCents, item.UnitPriceCents)
	}
	if item.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestLineItemLineTotalCents(t *testing.T) {
	// Arrange
	item := NewLineItem("order-123", "product-789", 0, 3, 1000)

	// Act
	total := item.LineTotalCents()

	// Assert
	if total != 3000 {
		t.Errorf("Expected line total 3000, got %d", total)
	}
}

func TestOrderStatus(t *testing.T) {
	// Test that constants are defined correctly
	if OrderStatusConfirmed != "confirmed" {
		t.Errorf("Expected OrderStatusConfirmed to be 'confirmed', got %s", OrderStatusConfirmed)
	}
}
