package domain

import (
	"time"

	"github.com/google/uuid"
)

// MappingRow associates one catalog product with one collection and an optional grade/size profile.
// (ProductID, CollectionID) is unique in the mapping store.
type MappingRow struct {
	ID               uuid.UUID `json:"id"`
	ProductID        string    `json:"product_id"`
	ProductHandle    string    `json:"product_handle"`
	ProductTitle     string    `json:"product_title"`
	CollectionID     string    `json:"collection_id"`
	CollectionHandle string    `json:"collection_handle"`
	CollectionTitle  string    `json:"collection_title"`
	Grade            *string   `json:"grade"`      // comma separated tokens; nil applies to all grades
	SizeRange        *string   `json:"size_range"` // nil when unknown
	SizeType         *string   `json:"size_type"`
	Size             SizeSet   `json:"size"` // nil is stored as NULL
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GradeValue returns the raw grade text, empty when unset
func (r *MappingRow) GradeValue() string {
	if r == nil || r.Grade == nil {
		return ""
	}
	return *r.Grade
}

// CollectionRef is a collection membership as reported by the catalog
type CollectionRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle,omitempty"`
}

// CatalogProduct is fetched live from the catalog and never persisted
type CatalogProduct struct {
	ID       string
	Handle   string
	Title    string
	ImageURL string
	// VariantOptionValues maps a folded option name ("size", "size type") to its distinct values
	VariantOptionValues map[string][]string
	Collections         []CollectionRef
}

// OptionValues returns the distinct values of a variant option, matched case-insensitively
func (p *CatalogProduct) OptionValues(name string) []string {
	if p == nil || p.VariantOptionValues == nil {
		return nil
	}
	return p.VariantOptionValues[FoldOptionName(name)]
}

// FirstOptionValue returns the first non-empty value of a variant option
func (p *CatalogProduct) FirstOptionValue(name string) string {
	for _, v := range p.OptionValues(name) {
		if v != "" {
			return v
		}
	}
	return ""
}

// ProductListItem is one product of a catalog listing page, flattened for the mapping editor
type ProductListItem struct {
	ID         string         `json:"id"`
	Handle     string         `json:"handle"`
	Title      string         `json:"title"`
	ImageURL   string         `json:"image_url,omitempty"`
	Grade      string         `json:"grade,omitempty"`
	Size       []string       `json:"size"`
	SizeType   string         `json:"size_type,omitempty"`
	SizeRange  string         `json:"size_range,omitempty"`
	Collection *CollectionRef `json:"collection,omitempty"`
}

// ProductPage is one cursor page of the catalog product listing
type ProductPage struct {
	Items       []ProductListItem `json:"items"`
	HasNextPage bool              `json:"hasNextPage"`
	EndCursor   string            `json:"endCursor"`
}
