package mockstore

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecoexchange/recycle/internal/apperr"
	"github.com/ecoexchange/recycle/internal/model"
)

// Listing is a material record in the standalone store. It mirrors
// model.Material but uses string IDs and carries the deal direction and
// the seller's display name.
type Listing struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Location    string          `json:"location,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name,omitempty"`
	DealType    string          `json:"deal_type"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// ListingInput is the payload for Create. The seller is not checked
// against any user table.
type ListingInput struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        string           `json:"unit"`
	Location    string           `json:"location"`
	ImageURL    string           `json:"image_url"`
	UserID      string           `json:"user_id"`
	UserName    string           `json:"user_name"`
	DealType    string           `json:"deal_type"`
}

// Validate checks required fields, the category enumeration and the deal
// direction. An empty deal type defaults to sell.
func (in *ListingInput) Validate() error {
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
	if len(missing) > 0 {
		return apperr.MissingFields(missing...)
	}
	if !model.ValidCategory(in.Category) {
		return apperr.Validation("invalid category")
	}
	if in.DealType != "" && !model.ValidDealType(in.DealType) {
		return apperr.Validation("deal_type must be 'buy' or 'sell'")
	}
	if in.Price.IsNegative() || in.Quantity.IsNegative() {
		return apperr.Validation("price and quantity must not be negative")
	}
	return nil
}

// ListingPatch extends the material content patch with the deal direction.
type ListingPatch struct {
	model.MaterialPatch
	DealType model.Optional[string] `json:"deal_type"`
}

// Empty reports whether the patch carries no fields.
func (p *ListingPatch) Empty() bool {
	return p.MaterialPatch.Empty() && !p.DealType.Set
}

// Validate checks the present fields.
func (p *ListingPatch) Validate() error {
	if err := p.MaterialPatch.Validate(); err != nil {
		return err
	}
	if p.DealType.Set && !model.ValidDealType(p.DealType.Value) {
		return apperr.Validation("deal_type must be 'buy' or 'sell'")
	}
	return nil
}

func (p *ListingPatch) apply(l *Listing) {
	// Reuse the material patch semantics through a scratch record.
	m := model.Material{
		Name:        l.Name,
		Category:    l.Category,
		Description: l.Description,
		Price:       l.Price,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		Location:    l.Location,
		ImageURL:    l.ImageURL,
	}
	p.MaterialPatch.Apply(&m)
	l.Name, l.Category, l.Description = m.Name, m.Category, m.Description
	l.Price, l.Quantity, l.Unit = m.Price, m.Quantity, m.Unit
	l.Location, l.ImageURL = m.Location, m.ImageURL
	if p.DealType.Set {
		l.DealType = p.DealType.Value
	}
}
