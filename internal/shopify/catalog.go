package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/domain"
)

const (
	collectionsPageSize = 250
	membershipPageSize  = 250
	variantPageSize     = 250
	maxOrderedPageSize  = 250

	defaultProductsPageSize = 50
)

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection[T any] struct {
	PageInfo pageInfo `json:"pageInfo"`
	Edges    []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

type collectionNode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type variantNode struct {
	SelectedOptions []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
}

type handleNode struct {
	Handle string `json:"handle"`
}

type imageNode struct {
	URL string `json:"url"`
}

// Catalog reads products and collections from the Shopify Admin API
type Catalog struct {
	client         *Client
	pageSize       int
	gradeNamespace string
	gradeKey       string
	logger         *zap.Logger
}

// NewCatalog creates a catalog reader on top of a GraphQL client
func NewCatalog(client *Client, cfg config.ShopifyConfig, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.ProductsPageSize
	if pageSize <= 0 {
		pageSize = defaultProductsPageSize
	}
	namespace, key := "custom", "grade"
	if parts := strings.SplitN(cfg.GradeMetafield, ".", 2); len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		namespace, key = parts[0], parts[1]
	}
	return &Catalog{
		client:         client,
		pageSize:       pageSize,
		gradeNamespace: namespace,
		gradeKey:       key,
		logger:         logger,
	}
}

// ListCollectionsOrdered returns every collection, fetching all pages before returning
func (c *Catalog) ListCollectionsOrdered(ctx context.Context) ([]domain.CollectionRef, error) {
	var out []domain.CollectionRef
	after := ""
	for {
		variables := map[string]interface{}{"first": collectionsPageSize}
		if after != "" {
			variables["after"] = after
		}
		resp, err := c.client.Execute(ctx, CollectionsQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}

		var result struct {
			Collections connection[collectionNode] `json:"collections"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse collections response: %w", err)
		}
		for _, n := range result.Collections.nodes() {
			out = append(out, domain.CollectionRef{ID: n.ID, Title: n.Title, Handle: n.Handle})
		}

		info := result.Collections.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			break
		}
		after = info.EndCursor
	}
	return out, nil
}

// ListProductsPage returns one page of products flattened for the mapping editor
func (c *Catalog) ListProductsPage(ctx context.Context, after string) (*domain.ProductPage, error) {
	variables := map[string]interface{}{
		"first":          c.pageSize,
		"gradeNamespace": c.gradeNamespace,
		"gradeKey":       c.gradeKey,
	}
	if after != "" {
		variables["after"] = after
	}
	resp, err := c.client.Execute(ctx, ProductsPageQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	type productNode struct {
		ID            string     `json:"id"`
		Handle        string     `json:"handle"`
		Title         string     `json:"title"`
		FeaturedImage *imageNode `json:"featuredImage"`
		Grade         *struct {
			Value string `json:"value"`
		} `json:"grade"`
		Variants    connection[variantNode]    `json:"variants"`
		Collections connection[collectionNode] `json:"collections"`
	}
	var result struct {
		Products connection[productNode] `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse products response: %w", err)
	}

	page := &domain.ProductPage{
		Items:       make([]domain.ProductListItem, 0, len(result.Products.Edges)),
		HasNextPage: result.Products.PageInfo.HasNextPage,
		EndCursor:   result.Products.PageInfo.EndCursor,
	}
	for _, n := range result.Products.nodes() {
		variants, err := c.allVariants(ctx, n.ID, n.Variants)
		if err != nil {
			return nil, err
		}
		options := buildOptionIndex(variants)
		item := domain.ProductListItem{
			ID:        n.ID,
			Handle:    n.Handle,
			Title:     n.Title,
			Size:      options.values(optionSize),
			SizeType:  options.first(optionSizeType),
			SizeRange: options.first(optionSizeRange),
		}
		if item.Size == nil {
			item.Size = []string{}
		}
		if n.FeaturedImage != nil {
			item.ImageURL = n.FeaturedImage.URL
		}
		if n.Grade != nil {
			item.Grade = n.Grade.Value
		}
		if cols := n.Collections.nodes(); len(cols) > 0 {
			item.Collection = &domain.CollectionRef{ID: cols[0].ID, Title: cols[0].Title, Handle: cols[0].Handle}
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// GetProductByHandle fetches a product with all of its collection memberships.
// It returns nil, nil when no product has the handle.
func (c *Catalog) GetProductByHandle(ctx context.Context, handle string) (*domain.CatalogProduct, error) {
	resp, err := c.client.Execute(ctx, ProductByHandleQuery, map[string]interface{}{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", handle, err)
	}

	var result struct {
		Product *struct {
			ID            string                     `json:"id"`
			Handle        string                     `json:"handle"`
			Title         string                     `json:"title"`
			FeaturedImage *imageNode                 `json:"featuredImage"`
			Variants      connection[variantNode]    `json:"variants"`
			Collections   connection[collectionNode] `json:"collections"`
		} `json:"productByIdentifier"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse product response: %w", err)
	}
	if result.Product == nil {
		return nil, nil
	}
	p := result.Product

	variants, err := c.allVariants(ctx, p.ID, p.Variants)
	if err != nil {
		return nil, err
	}
	product := &domain.CatalogProduct{
		ID:                  p.ID,
		Handle:              p.Handle,
		Title:               p.Title,
		VariantOptionValues: buildOptionIndex(variants),
	}
	if p.FeaturedImage != nil {
		product.ImageURL = p.FeaturedImage.URL
	}

	seen := make(map[string]struct{})
	addCollections := func(nodes []collectionNode) {
		for _, n := range nodes {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			product.Collections = append(product.Collections, domain.CollectionRef{ID: n.ID, Title: n.Title, Handle: n.Handle})
		}
	}
	addCollections(p.Collections.nodes())

	info := p.Collections.PageInfo
	for info.HasNextPage && info.EndCursor != "" {
		resp, err := c.client.Execute(ctx, ProductCollectionsQuery, map[string]interface{}{
			"id":    p.ID,
			"first": membershipPageSize,
			"after": info.EndCursor,
		})
		if err != nil {
			return nil, fmt.Errorf("get collections of %q: %w", handle, err)
		}
		var more struct {
			Product *struct {
				Collections connection[collectionNode] `json:"collections"`
			} `json:"product"`
		}
		if err := json.Unmarshal(resp.Data, &more); err != nil {
			return nil, fmt.Errorf("parse product collections response: %w", err)
		}
		if more.Product == nil {
			break
		}
		addCollections(more.Product.Collections.nodes())
		info = more.Product.Collections.PageInfo
	}

	return product, nil
}

// allVariants returns the variants of the first page plus every following page
func (c *Catalog) allVariants(ctx context.Context, productID string, first connection[variantNode]) ([]variantNode, error) {
	variants := first.nodes()
	info := first.PageInfo
	for info.HasNextPage && info.EndCursor != "" {
		resp, err := c.client.Execute(ctx, ProductVariantsQuery, map[string]interface{}{
			"id":    productID,
			"first": variantPageSize,
			"after": info.EndCursor,
		})
		if err != nil {
			return nil, fmt.Errorf("get variants of %s: %w", productID, err)
		}
		var more struct {
			Product *struct {
				Variants connection[variantNode] `json:"variants"`
			} `json:"product"`
		}
		if err := json.Unmarshal(resp.Data, &more); err != nil {
			return nil, fmt.Errorf("parse product variants response: %w", err)
		}
		if more.Product == nil {
			break
		}
		variants = append(variants, more.Product.Variants.nodes()...)
		info = more.Product.Variants.PageInfo
	}
	return variants, nil
}

// orderedQueryVariant is one way of asking for a collection's product order
type orderedQueryVariant struct {
	name  string
	query string
}

var orderedQueryVariants = []orderedQueryVariant{
	{name: "manual", query: CollectionHandlesManualQuery},
	{name: "default", query: CollectionHandlesDefaultQuery},
}

// ListCollectionProductHandlesOrdered returns the collection's product handles in storefront order.
// The manual sort key is tried first; if the catalog rejects it the query is retried without a sort key.
// An empty result means the order is unavailable, not that the collection is empty.
func (c *Catalog) ListCollectionProductHandlesOrdered(ctx context.Context, collectionHandle string) []string {
	for _, variant := range orderedQueryVariants {
		handles, err := c.collectionHandles(ctx, variant.query, collectionHandle)
		if err == nil {
			return handles
		}
		c.logger.Warn("Ordered collection query failed",
			zap.String("variant", variant.name),
			zap.String("collection_handle", collectionHandle),
			zap.Error(err),
		)
	}
	return []string{}
}

func (c *Catalog) collectionHandles(ctx context.Context, query, collectionHandle string) ([]string, error) {
	handles := []string{}
	after := ""
	for {
		variables := map[string]interface{}{
			"handle": collectionHandle,
			"first":  maxOrderedPageSize,
		}
		if after != "" {
			variables["after"] = after
		}
		resp, err := c.client.Execute(ctx, query, variables)
		if err != nil {
			return nil, err
		}

		var result struct {
			Collection *struct {
				Products connection[handleNode] `json:"products"`
			} `json:"collectionByHandle"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse collection products response: %w", err)
		}
		if result.Collection == nil {
			return []string{}, nil
		}
		for _, n := range result.Collection.Products.nodes() {
			handles = append(handles, n.Handle)
		}

		info := result.Collection.Products.PageInfo
		if !info.HasNextPage || info.EndCursor == "" {
			return handles, nil
		}
		after = info.EndCursor
	}
}
