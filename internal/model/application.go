package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecoexchange/recycle/internal/apperr"
)

// Application is a buy or sell request, optionally tied to a listing.
type Application struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	MaterialType string          `json:"material_type"`
	DealType     string          `json:"deal_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	MaterialID   *int64          `json:"material_id,omitempty"`
	UserID       int64           `json:"user_id"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Deal directions.
const (
	DealBuy  = "buy"
	DealSell = "sell"
)

// Application statuses.
const (
	ApplicationStatusActive    = "active"
	ApplicationStatusCompleted = "completed"
	ApplicationStatusCancelled = "cancelled"
)

// ValidDealType reports whether d is buy or sell.
func ValidDealType(d string) bool {
	return d == DealBuy || d == DealSell
}

// ValidApplicationStatus reports whether s is a known application status.
func ValidApplicationStatus(s string) bool {
	return s == ApplicationStatusActive || s == ApplicationStatusCompleted || s == ApplicationStatusCancelled
}

// ApplicationInput is the payload for creating an application. UserID is
// taken from the authenticated caller.
type ApplicationInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	MaterialType string           `json:"material_type"`
	DealType     string           `json:"deal_type"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Price        *decimal.Decimal `json:"price"`
	MaterialID   *int64           `json:"material_id"`
	UserID       int64            `json:"-"`
}

// Validate checks required fields and value ranges.
func (in *ApplicationInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.MaterialType == "" {
		missing = append(missing, "material_type")
	}
	if in.DealType == "" {
		missing = append(missing, "deal_type")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}

	if !ValidCategory(in.MaterialType) {
		return apperr.Validation("invalid material_type")
	}
	if !ValidDealType(in.DealType) {
		return apperr.Validation("deal_type must be 'buy' or 'sell'")
	}
	if in.Quantity.IsNegative() || in.Price.IsNegative() {
		return apperr.Validation("price and quantity must not be negative")
	}
	return nil
}

// ApplicationFilter narrows application listings. Zero values match all.
type ApplicationFilter struct {
	UserID int64
	Status string
}

// ApplicationPatch is a partial content edit. Status and owner change
// through their own operations.
type ApplicationPatch struct {
	Title        Optional[string]          `json:"title"`
	Description  Optional[string]          `json:"description"`
	MaterialType Optional[string]          `json:"material_type"`
	DealType     Optional[string]          `json:"deal_type"`
	Quantity     Optional[decimal.Decimal] `json:"quantity"`
	Price        Optional[decimal.Decimal] `json:"price"`
}

// Empty reports whether the patch carries no fields.
func (p *ApplicationPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.MaterialType.Set &&
		!p.DealType.Set && !p.Quantity.Set && !p.Price.Set
}

// Validate checks the present fields.
func (p *ApplicationPatch) Validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return apperr.Validation("title must not be empty")
	}
	if p.MaterialType.Set && !ValidCategory(p.MaterialType.Value) {
		return apperr.Validation("invalid material_type")
	}
	if p.DealType.Set && !ValidDealType(p.DealType.Value) {
		return apperr.Validation("deal_type must be 'buy' or 'sell'")
	}
	if (p.Quantity.Set && p.Quantity.Value.IsNegative()) || (p.Price.Set && p.Price.Value.IsNegative()) {
		return apperr.Validation("price and quantity must not be negative")
	}
	return nil
}
