package service

import (
	"context"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

// ProductLookup fetches a single catalog product; nil, nil means the handle does not exist
type ProductLookup interface {
	GetProductByHandle(ctx context.Context, handle string) (*domain.CatalogProduct, error)
}

// CollectionOrderSource returns a collection's storefront order. An empty result means the order is unknown.
type CollectionOrderSource interface {
	ListCollectionProductHandlesOrdered(ctx context.Context, collectionHandle string) []string
}

// CatalogReader is the full read surface of the catalog used by the server
type CatalogReader interface {
	ProductLookup
	CollectionOrderSource
	ListCollectionsOrdered(ctx context.Context) ([]domain.CollectionRef, error)
	ListProductsPage(ctx context.Context, after string) (*domain.ProductPage, error)
}
