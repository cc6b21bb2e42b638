package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/repository"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

// CollectionGrade is one collection association submitted from the mapping editor
type CollectionGrade struct {
	CollectionID     string `json:"collection_id"`
	CollectionHandle string `json:"collection_handle"`
	CollectionTitle  string `json:"collection_title"`
	Grade            string `json:"grade"`
}

// SaveRowRequest replaces every association of one product
type SaveRowRequest struct {
	ProductID     string            `json:"product_id" binding:"required"`
	ProductHandle string            `json:"product_handle"`
	ProductTitle  string            `json:"product_title"`
	SizeRange     string            `json:"size_range"`
	SizeType      string            `json:"size_type"`
	Size          []string          `json:"size"`
	Collections   []CollectionGrade `json:"collections"`
}

// MappingService implements the mapping editor's write actions
type MappingService struct {
	mappings repository.MappingRepository
	logger   *zap.Logger
}

func NewMappingService(mappings repository.MappingRepository, logger *zap.Logger) *MappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingService{mappings: mappings, logger: logger}
}

// SaveRow makes the product's stored associations equal to req.Collections.
// An empty list deletes every row of the product. Returns the number of rows written.
func (s *MappingService) SaveRow(ctx context.Context, req SaveRowRequest) (int, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return 0, &errors.ErrValidation{Message: "product_id is required"}
	}

	if len(req.Collections) == 0 {
		n, err := s.mappings.DeleteByProduct(ctx, productID)
		if err != nil {
			return 0, err
		}
		s.logger.Info("Cleared product mappings", zap.String("product_id", productID), zap.Int64("rows", n))
		return 0, nil
	}

	if strings.TrimSpace(req.ProductHandle) == "" {
		return 0, &errors.ErrValidation{Message: "product_handle is required"}
	}

	sizes := domain.NewSizeSet(req.Size...).OrNil()
	sizeRange := optionalString(req.SizeRange)
	sizeType := optionalString(req.SizeType)

	// a collection submitted twice keeps its last grade
	byID := make(map[string]int, len(req.Collections))
	rows := make([]*domain.MappingRow, 0, len(req.Collections))
	keep := make([]string, 0, len(req.Collections))
	for _, c := range req.Collections {
		id := strings.TrimSpace(c.CollectionID)
		handle := strings.TrimSpace(c.CollectionHandle)
		if id == "" || handle == "" {
			return 0, &errors.ErrValidation{
				Message: "collection_id and collection_handle are required for every collection",
				Fields:  map[string]string{"collections": "incomplete entry"},
			}
		}
		row := &domain.MappingRow{
			ProductID:        productID,
			ProductHandle:    strings.TrimSpace(req.ProductHandle),
			ProductTitle:     req.ProductTitle,
			CollectionID:     id,
			CollectionHandle: handle,
			CollectionTitle:  c.CollectionTitle,
			Grade:            normalizeGrade(c.Grade),
			SizeRange:        sizeRange,
			SizeType:         sizeType,
			Size:             sizes,
		}
		if i, ok := byID[id]; ok {
			rows[i] = row
			continue
		}
		byID[id] = len(rows)
		rows = append(rows, row)
		keep = append(keep, id)
	}

	if _, err := s.mappings.DeleteByProductExcept(ctx, productID, keep); err != nil {
		return 0, err
	}
	n, err := s.mappings.UpsertRows(ctx, rows)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Saved product mappings", zap.String("product_id", productID), zap.Int("rows", n))
	return n, nil
}

// DeleteCollection removes one product/collection association; deleting a missing row is not an error
func (s *MappingService) DeleteCollection(ctx context.Context, productID, collectionID string) error {
	productID = strings.TrimSpace(productID)
	collectionID = strings.TrimSpace(collectionID)
	if productID == "" || collectionID == "" {
		return &errors.ErrValidation{Message: "product_id and collection_id are required"}
	}
	return s.mappings.DeleteRow(ctx, productID, collectionID)
}

// ListProduct returns every stored association of a product
func (s *MappingService) ListProduct(ctx context.Context, productID string) ([]*domain.MappingRow, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, &errors.ErrValidation{Message: "product_id is required"}
	}
	return s.mappings.ListByProduct(ctx, productID)
}

// normalizeGrade rewrites "7, 8 ,," as "7,8"; an empty result means all grades
func normalizeGrade(raw string) *string {
	set := domain.NewGradeSet()
	set.AddRaw(raw)
	if set.Len() == 0 {
		return nil
	}
	joined := strings.Join(set.Tokens(), ",")
	return &joined
}
