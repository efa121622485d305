package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"treasury/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username.
// No default holdings are seeded; tests add exactly what they need.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("user%d", nextID()),
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHolding creates a holding with the given fields.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID string, list models.HoldingList, symbol string, quantity float64, category models.AssetCategory, currency string, price float64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:       userID,
		List:         list,
		Symbol:       symbol,
		Quantity:     quantity,
		Category:     category,
		Currency:     currency,
		CurrentPrice: price,
		LastUpdated:  time.Now(),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateCashHolding creates a portfolio cash position at price 1.
func CreateCashHolding(t *testing.T, db *gorm.DB, userID, currency string, quantity float64) *models.Holding {
	t.Helper()
	return CreateTestHolding(t, db, userID, models.ListPortfolio, "Cash", quantity, models.CategoryCash, currency, 1)
}

// CreateTestHistoryPoint creates one valuation history point.
func CreateTestHistoryPoint(t *testing.T, db *gorm.DB, userID string, recordedAt time.Time, valueUSD, valueCNY float64) *models.HistoryPoint {
	t.Helper()

	point := &models.HistoryPoint{
		UserID:     userID,
		RecordedAt: recordedAt,
		ValueUSD:   valueUSD,
		ValueCNY:   valueCNY,
	}
	if err := db.Create(point).Error; err != nil {
		t.Fatalf("failed to create test history point: %v", err)
	}
	return point
}
