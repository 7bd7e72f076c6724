package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices and totals go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) InStock() bool { return p.Quantity > 0 }

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("product name is required")
	}
	if p.Price.IsNegative() {
		return Invalid("price must not be negative")
	}
	if p.Quantity < 0 {
		return Invalid("quantity must not be negative")
	}
	return nil
}

// ProductPatch carries a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
}

// Validate checks the fields the patch sets.
func (pp ProductPatch) Validate() error {
	if pp.Name != nil && strings.TrimSpace(*pp.Name) == "" {
		return Invalid("product name is required")
	}
	if pp.Price != nil && pp.Price.IsNegative() {
		return Invalid("price must not be negative")
	}
	if pp.Quantity != nil && *pp.Quantity < 0 {
		return Invalid("quantity must not be negative")
	}
	return nil
}

func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = strings.TrimSpace(*pp.Name)
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Quantity != nil {
		p.Quantity = *pp.Quantity
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
}
