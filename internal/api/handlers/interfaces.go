package handlers

import (
	"context"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/service"
)

// GradeQuerier answers storefront grade queries
type GradeQuerier interface {
	ProductGrades(ctx context.Context, collectionHandle, productHandle string) (*service.ProductGradesResult, error)
	CollectionHandles(ctx context.Context, q service.CollectionQuery) (*service.CollectionResult, error)
}

// SyncRunner drives chained sync batches from the saved checkpoint
type SyncRunner interface {
	Run(ctx context.Context, opts service.RunOptions) (*domain.Checkpoint, error)
	Checkpoint(ctx context.Context) (*domain.Checkpoint, error)
	Reset(ctx context.Context) error
}

// MappingEditor performs the mapping editor's actions
type MappingEditor interface {
	SaveRow(ctx context.Context, req service.SaveRowRequest) (int, error)
	DeleteCollection(ctx context.Context, productID, collectionID string) error
	ListProduct(ctx context.Context, productID string) ([]*domain.MappingRow, error)
}

// CatalogBrowser lists catalog data for the mapping editor
type CatalogBrowser interface {
	ListCollectionsOrdered(ctx context.Context) ([]domain.CollectionRef, error)
	ListProductsPage(ctx context.Context, after string) (*domain.ProductPage, error)
}
