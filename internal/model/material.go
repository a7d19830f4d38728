package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecoexchange/recycle/internal/apperr"
)

func init() {
	// Prices and quantities travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Material is a listing offering (or asking for) a recyclable material.
type Material struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Location    string          `json:"location"`
	SellerID    int64           `json:"seller_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// Material categories.
const (
	CategoryPaper       = "paper"
	CategoryPlastic     = "plastic"
	CategoryGlass       = "glass"
	CategoryMetal       = "metal"
	CategoryElectronics = "electronics"
)

// Categories lists every accepted material category.
var Categories = []string{
	CategoryPaper,
	CategoryPlastic,
	CategoryGlass,
	CategoryMetal,
	CategoryElectronics,
}

// Material statuses. New listings wait in pending until a moderator acts.
const (
	MaterialStatusActive   = "active"
	MaterialStatusPending  = "pending"
	MaterialStatusRejected = "rejected"
)

// DefaultUnit is applied when a listing omits its unit.
const DefaultUnit = "kg"

// Search sort orders.
const (
	SortPrice = "price"
	SortDate  = "date"
)

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidMaterialStatus reports whether s is a known listing status.
func ValidMaterialStatus(s string) bool {
	return s == MaterialStatusActive || s == MaterialStatusPending || s == MaterialStatusRejected
}

// MaterialInput is the payload for creating a listing.
type MaterialInput struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        string           `json:"unit"`
	Location    string           `json:"location"`
	SellerID    int64            `json:"seller_id"`
	ImageURL    string           `json:"image_url"`
}

// Validate checks required fields and value ranges.
func (in *MaterialInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if in.SellerID <= 0 {
		missing = append(missing, "seller_id")
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}

	if !ValidCategory(in.Category) {
		return apperr.Validation("invalid category")
	}
	if in.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if in.Quantity.IsNegative() {
		return apperr.Validation("quantity must not be negative")
	}
	return nil
}

// MaterialPatch is a partial update. Only fields marked Set are written;
// status and seller are not part of a content edit.
type MaterialPatch struct {
	Name        Optional[string]          `json:"name"`
	Category    Optional[string]          `json:"category"`
	Description Optional[string]          `json:"description"`
	Price       Optional[decimal.Decimal] `json:"price"`
	Quantity    Optional[decimal.Decimal] `json:"quantity"`
	Unit        Optional[string]          `json:"unit"`
	Location    Optional[string]          `json:"location"`
	ImageURL    Optional[string]          `json:"image_url"`
}

// Empty reports whether the patch carries no fields.
func (p *MaterialPatch) Empty() bool {
	return !p.Name.Set && !p.Category.Set && !p.Description.Set && !p.Price.Set &&
		!p.Quantity.Set && !p.Unit.Set && !p.Location.Set && !p.ImageURL.Set
}

// Validate checks the present fields against the listing invariants.
func (p *MaterialPatch) Validate() error {
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		return apperr.Validation("name must not be empty")
	}
	if p.Category.Set && !ValidCategory(p.Category.Value) {
		return apperr.Validation("invalid category")
	}
	if p.Price.Set && p.Price.Value.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if p.Quantity.Set && p.Quantity.Value.IsNegative() {
		return apperr.Validation("quantity must not be negative")
	}
	return nil
}

// Apply copies the present fields onto m.
func (p *MaterialPatch) Apply(m *Material) {
	if p.Name.Set {
		m.Name = p.Name.Value
	}
	if p.Category.Set {
		m.Category = p.Category.Value
	}
	if p.Description.Set {
		m.Description = p.Description.Value
	}
	if p.Price.Set {
		m.Price = p.Price.Value
	}
	if p.Quantity.Set {
		m.Quantity = p.Quantity.Value
	}
	if p.Unit.Set {
		m.Unit = p.Unit.Value
	}
	if p.Location.Set {
		m.Location = p.Location.Value
	}
	if p.ImageURL.Set {
		m.ImageURL = p.ImageURL.Value
	}
}

// MaterialQuery holds search filters. Empty fields impose no restriction.
type MaterialQuery struct {
	Query    string
	Category string
	Sort     string
	Status   string
	Limit    int
	Offset   int
}

// Validate rejects unknown categories, statuses and sort orders.
func (q *MaterialQuery) Validate() error {
	if q.Category != "" && !ValidCategory(q.Category) {
		return apperr.Validation("invalid category")
	}
	if q.Status != "" && !ValidMaterialStatus(q.Status) {
		return apperr.Validation("invalid status")
	}
	if q.Sort != "" && q.Sort != SortPrice && q.Sort != SortDate {
		return apperr.Validation("sort must be 'price' or 'date'")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return apperr.Validation("limit and offset must not be negative")
	}
	return nil
}
