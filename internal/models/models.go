package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin          = "Admin"
	RoleSalesManager   = "SalesManager"
	RolePlumber        = "Plumber"
	RoleAccountant     = "Accountant"
	RoleDistributor    = "Distributor"
	RoleFieldExecutive = "FieldExecutive"
	RoleWorker         = "Worker"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

const (
	PromoStatusActive   = "Active"
	PromoStatusInactive = "Inactive"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Product struct {
	ID                     uint            `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Name                   string          `gorm:"not null"                                     json:"name"`
	Description            string          `json:"description"`
	Price                  decimal.Decimal `gorm:"type:decimal(12,2);not null"                  json:"price"`
	StockQuantity          int             `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	WarrantyPeriodInMonths int             `gorm:"not null;default:0"                           json:"warranty_period_in_months"`
}

type PromoCode struct {
	ID             uint             `gorm:"primaryKey;autoIncrement"    json:"id"`
	Code           string           `gorm:"unique;not null"             json:"code"`
	Description    string           `json:"description"`
	DiscountType   string           `gorm:"not null"                    json:"discount_type"`
	DiscountValue  decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(12,2)"          json:"min_order_amount,omitempty"`
	MaxDiscount    *decimal.Decimal `gorm:"type:decimal(12,2)"          json:"max_discount,omitempty"`
	ValidFrom      time.Time        `gorm:"not null"                    json:"valid_from"`
	ValidUntil     time.Time        `gorm:"not null"                    json:"valid_until"`
	UsageLimit     *int             `json:"usage_limit,omitempty"`
	UsedCount      int              `gorm:"not null;default:0"          json:"used_count"`
	Status         string           `gorm:"not null;default:Active"     json:"status"`
}

type Order struct {
	ID          uint        `gorm:"primaryKey"         json:"id"`
	UserID      uint        `gorm:"index;not null"     json:"user_id"`
	Status      string      `gorm:"not null"           json:"status"`
	OrderDate   time.Time   `gorm:"not null"           json:"order_date"`
	PromoCodeID *uint       `json:"promo_code_id,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// UnitPrice is the price snapshot taken when the order was placed; it never
// follows later catalog price changes.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

type WarrantyCard struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	OrderItemID uint      `gorm:"index;not null" json:"order_item_id"`
	ProductID   uint      `gorm:"not null"       json:"product_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	IssuedAt    time.Time `gorm:"not null"       json:"issued_at"`
	ExpiresAt   time.Time `gorm:"not null"       json:"expires_at"`
}

type PointEntry struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	OrderID   uint      `gorm:"not null"       json:"order_id"`
	Points    int64     `gorm:"not null"       json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

type SalesManagerProfile struct {
	ID     uint   `gorm:"primaryKey"           json:"id"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Region string `json:"region"`
}

type PlumberProfile struct {
	ID            uint   `gorm:"primaryKey"           json:"id"`
	UserID        uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	LicenseNumber string `json:"license_number"`
}

type AccountantProfile struct {
	ID     uint `gorm:"primaryKey"           json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
}

type DistributorProfile struct {
	ID          uint   `gorm:"primaryKey"           json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName string `json:"company_name"`
}

type FieldExecutiveProfile struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	UserID    uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Territory string `json:"territory"`
}

type WorkerProfile struct {
	ID     uint   `gorm:"primaryKey"           json:"id"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Shift  string `json:"shift"`
}
