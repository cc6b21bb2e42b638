package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/repository"
	"github.com/jafarshop/gradeoverlay/pkg/errors"
)

const (
	DefaultPageLimit = 24
	MaxPageLimit     = 48
)

// CollectionQuery selects the handles of one collection for the storefront
type CollectionQuery struct {
	CollectionHandle string
	Grade            string
	// Paginate is set when the caller sent page or limit
	Paginate bool
	Page     int
	Limit    int
}

// Normalize clamps paging parameters: limit to [1, MaxPageLimit] (default DefaultPageLimit), page to >= 1
func (q *CollectionQuery) Normalize() {
	q.CollectionHandle = strings.TrimSpace(q.CollectionHandle)
	q.Grade = strings.TrimSpace(q.Grade)
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
}

// CollectionResult is the collection mode payload
type CollectionResult struct {
	CollectionHandle string            `json:"collection_handle"`
	Grade            string            `json:"grade,omitempty"`
	Handles          []string          `json:"handles"`
	AvailableGrades  []string          `json:"available_grades"`
	GradeByHandle    map[string]string `json:"gradeByHandle"`
	// Ordered is true when the catalog's storefront order was applied
	Ordered bool `json:"ordered"`
	Total   int  `json:"total"`
	Page    int  `json:"page,omitempty"`
	Limit   int  `json:"limit,omitempty"`
	HasMore bool `json:"has_more,omitempty"`
}

// ProductGradesResult is the product mode payload
type ProductGradesResult struct {
	CollectionHandle string   `json:"collection_handle"`
	ProductHandle    string   `json:"product_handle"`
	Grades           []string `json:"grades"`
	GradesCSV        string   `json:"grades_csv"`
}

// QueryService answers the storefront's read-only grade queries
type QueryService struct {
	mappings repository.MappingRepository
	order    CollectionOrderSource
	logger   *zap.Logger
}

func NewQueryService(mappings repository.MappingRepository, order CollectionOrderSource, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{mappings: mappings, order: order, logger: logger}
}

// ProductGrades returns the distinct grades of one product within one collection
func (s *QueryService) ProductGrades(ctx context.Context, collectionHandle, productHandle string) (*ProductGradesResult, error) {
	collectionHandle = strings.TrimSpace(collectionHandle)
	productHandle = strings.TrimSpace(productHandle)
	if collectionHandle == "" {
		return nil, &errors.ErrValidation{Message: "collection_handle is required"}
	}

	rows, err := s.mappings.SelectByCollectionAndProduct(ctx, collectionHandle, productHandle)
	if err != nil {
		return nil, err
	}

	grades := AggregateAvailableGrades(rows)
	return &ProductGradesResult{
		CollectionHandle: collectionHandle,
		ProductHandle:    productHandle,
		Grades:           grades,
		GradesCSV:        strings.Join(grades, ","),
	}, nil
}

// CollectionHandles lists a collection's product handles in storefront order, optionally filtered by grade
// and paginated. Catalog ordering failures fall back to mapping store order.
func (s *QueryService) CollectionHandles(ctx context.Context, q CollectionQuery) (*CollectionResult, error) {
	q.Normalize()
	if q.CollectionHandle == "" {
		return nil, &errors.ErrValidation{Message: "collection_handle is required"}
	}

	rows, err := s.mappings.SelectByCollection(ctx, q.CollectionHandle)
	if err != nil {
		return nil, err
	}

	rowsByHandle := make(map[string][]*domain.MappingRow, len(rows))
	handles := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := rowsByHandle[r.ProductHandle]; !ok {
			handles = append(handles, r.ProductHandle)
		}
		rowsByHandle[r.ProductHandle] = append(rowsByHandle[r.ProductHandle], r)
	}

	result := &CollectionResult{
		CollectionHandle: q.CollectionHandle,
		Grade:            q.Grade,
		AvailableGrades:  AggregateAvailableGrades(rows),
	}

	if len(handles) > 1 && s.order != nil {
		catalogOrder := s.order.ListCollectionProductHandlesOrdered(ctx, q.CollectionHandle)
		if len(catalogOrder) > 0 {
			handles = Reorder(handles, catalogOrder)
			result.Ordered = true
		} else {
			s.logger.Debug("Catalog order unavailable, keeping mapping order", zap.String("collection_handle", q.CollectionHandle))
		}
	}

	if q.Grade != "" {
		filtered := handles[:0:0]
		for _, h := range handles {
			for _, r := range rowsByHandle[h] {
				if domain.HasGrade(r.GradeValue(), q.Grade) {
					filtered = append(filtered, h)
					break
				}
			}
		}
		handles = filtered
	}

	result.Total = len(handles)
	if q.Paginate {
		start := (q.Page - 1) * q.Limit
		if start > len(handles) {
			start = len(handles)
		}
		end := start + q.Limit
		if end > len(handles) {
			end = len(handles)
		}
		result.HasMore = end < len(handles)
		result.Page = q.Page
		result.Limit = q.Limit
		handles = handles[start:end]
	}

	result.Handles = handles
	result.GradeByHandle = make(map[string]string, len(handles))
	for _, h := range handles {
		result.GradeByHandle[h] = gradeSummary(rowsByHandle[h])
	}
	return result, nil
}
