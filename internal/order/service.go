package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avetisn/plumb_erp/internal/models"
	"github.com/avetisn/plumb_erp/internal/promo"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrConflict          = errors.New("conflict")           // 409, retryable
)

type ItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type Pricing struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// PromoResult reports what happened to the requested promo code. An
// inapplicable code does not fail the order; it is reported here instead.
type PromoResult struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

type PlacedOrder struct {
	Order   models.Order `json:"order"`
	Pricing Pricing      `json:"pricing"`
	Promo   *PromoResult `json:"promo,omitempty"`
}

// Service coordinates order placement: stock validation, price snapshot,
// promo evaluation and the atomic write of all side effects.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	for i := range items {
		if items[i].ProductID == 0 {
			return fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if items[i].Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
	}
	return nil
}

// PlaceOrder turns the item list into a durable order. The order row with
// its items, the stock decrements, the promo used-count increment and the
// loyalty points all commit together or not at all.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, items []ItemRequest, promoCode string) (*PlacedOrder, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var placed *PlacedOrder

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &GormRepo{DB: tx}
		now := s.now()

		needed := make(map[uint]int, len(items))
		ids := make([]uint, 0, len(items))
		for _, it := range items {
			if needed[it.ProductID] == 0 {
				ids = append(ids, it.ProductID)
			}
			needed[it.ProductID] += it.Quantity
		}

		products, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return fmt.Errorf("%w: product %d", ErrNotFound, id)
			}
		}

		for id, qty := range needed {
			if p := byID[id]; p.StockQuantity < qty {
				return fmt.Errorf("%w: not enough stock for %s", ErrInsufficientStock, p.Name)
			}
		}

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			p := byID[it.ProductID]
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
			})
		}
		subtotal = subtotal.Round(2)

		discount := decimal.Zero
		var promoID *uint
		var promoResult *PromoResult
		if promoCode != "" {
			eval, err := (&promo.Evaluator{DB: tx}).Evaluate(ctx, promoCode, subtotal, now)
			if err != nil {
				return err
			}
			promoResult = &PromoResult{Code: promoCode, Applied: eval.Applicable, Reason: eval.Reason}
			if eval.Applicable {
				discount = eval.DiscountAmount
				promoID = &eval.Promo.ID
			}
		}

		total := subtotal.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		for id, qty := range needed {
			if err := repo.DecrementStock(ctx, id, qty); err != nil {
				return err
			}
		}

		o := models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			OrderDate:   now,
			PromoCodeID: promoID,
			Items:       orderItems,
		}
		if err := repo.CreateOrder(ctx, &o); err != nil {
			return err
		}

		if promoID != nil {
			if err := repo.ConsumePromoUsage(ctx, *promoID); err != nil {
				return err
			}
		}

		if pts := total.IntPart(); pts > 0 {
			entry := models.PointEntry{UserID: userID, OrderID: o.ID, Points: pts, CreatedAt: now}
			if err := repo.AwardPoints(ctx, &entry); err != nil {
				return err
			}
		}

		placed = &PlacedOrder{
			Order:   o,
			Pricing: Pricing{Subtotal: subtotal, DiscountAmount: discount, Total: total},
			Promo:   promoResult,
		}
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return placed, nil
}

// MyOrders lists the caller's orders, newest first.
func (s *Service) MyOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	repo := &GormRepo{DB: s.DB}
	return repo.ListOrders(ctx, userID, offset, limit)
}

// UpdateStatus moves a pending order to completed or cancelled.
// Cancellation returns the reserved stock.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if status != models.OrderStatusCompleted && status != models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrValidation, models.OrderStatusCompleted, models.OrderStatusCancelled)
	}

	var o models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if o.Status != models.OrderStatusPending {
			return fmt.Errorf("%w: order %d is already %s", ErrConflict, orderID, o.Status)
		}

		if status == models.OrderStatusCancelled {
			repo := &GormRepo{DB: tx}
			for _, item := range o.Items {
				if err := repo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		o.Status = status
		return tx.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", status).Error
	})

	if txErr != nil {
		return nil, txErr
	}
	return &o, nil
}
