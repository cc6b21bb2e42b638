package domain

import "time"

// SourceRow is one row of the bulk grade source table. Handles may repeat.
type SourceRow struct {
	Handle string
	Grade  string
}

// SourcePage is one offset page of the source table.
// Total is nil when the table could not report an exact count.
type SourcePage struct {
	Rows  []SourceRow
	Total *int64
}

// SyncRunTotals are cumulative counters threaded through a chain of sync batches
type SyncRunTotals struct {
	Batches          int `json:"batches"`
	UniqueHandles    int `json:"uniqueHandles"`
	UpdatedHandles   int `json:"updatedHandles"`
	UpdatedRows      int `json:"updatedRows"`
	InsertedProducts int `json:"insertedProducts"`
	InsertedRows     int `json:"insertedRows"`
	MissingInShopify int `json:"missingInShopify"`
}

// Add returns the field-wise sum of t and o
func (t SyncRunTotals) Add(o SyncRunTotals) SyncRunTotals {
	return SyncRunTotals{
		Batches:          t.Batches + o.Batches,
		UniqueHandles:    t.UniqueHandles + o.UniqueHandles,
		UpdatedHandles:   t.UpdatedHandles + o.UpdatedHandles,
		UpdatedRows:      t.UpdatedRows + o.UpdatedRows,
		InsertedProducts: t.InsertedProducts + o.InsertedProducts,
		InsertedRows:     t.InsertedRows + o.InsertedRows,
		MissingInShopify: t.MissingInShopify + o.MissingInShopify,
	}
}

// BatchSummary reports what a single sync batch did
type BatchSummary struct {
	Offset           int    `json:"offset"`
	Limit            int    `json:"limit"`
	SourceRows       int    `json:"sourceRows"`
	UniqueHandles    int    `json:"uniqueHandles"`
	UpdatedHandles   int    `json:"updatedHandles"`
	UpdatedRows      int    `json:"updatedRows"`
	InsertedProducts int    `json:"insertedProducts"`
	InsertedRows     int    `json:"insertedRows"`
	MissingInShopify int    `json:"missingInShopify"`
	NoCollections    int    `json:"skippedNoCollections"`
	Total            *int64 `json:"total"`
	NextOffset       int    `json:"nextOffset"`
	HasMore          bool   `json:"hasMore"`
}

// Totals converts the batch counters into a running-totals increment
func (s BatchSummary) Totals() SyncRunTotals {
	return SyncRunTotals{
		Batches:          1,
		UniqueHandles:    s.UniqueHandles,
		UpdatedHandles:   s.UpdatedHandles,
		UpdatedRows:      s.UpdatedRows,
		InsertedProducts: s.InsertedProducts,
		InsertedRows:     s.InsertedRows,
		MissingInShopify: s.MissingInShopify,
	}
}

// BatchResult is returned by every sync batch invocation
type BatchResult struct {
	// BatchID is offset+limit; it grows monotonically along a run and lets consumers drop re-delivered results
	BatchID   int           `json:"batchId"`
	Done      bool          `json:"done"`
	Summary   BatchSummary  `json:"summary"`
	RunTotals SyncRunTotals `json:"runTotals"`
}

// BatchIDFor derives the batch identifier for a page request
func BatchIDFor(offset, limit int) int {
	return offset + limit
}

// Checkpoint is the persisted position of a sync run
type Checkpoint struct {
	Offset      int           `json:"offset"`
	Limit       int           `json:"limit"`
	RunTotals   SyncRunTotals `json:"runTotals"`
	LastBatchID int           `json:"lastBatchId"`
	Done        bool          `json:"done"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Apply folds a batch result into the checkpoint. A result whose BatchID is not newer than the last
// applied one is a re-delivery and is ignored; Apply reports whether the result was taken.
func (c *Checkpoint) Apply(res *BatchResult, now time.Time) bool {
	if res == nil {
		return false
	}
	if c.LastBatchID != 0 && res.BatchID <= c.LastBatchID {
		return false
	}
	c.LastBatchID = res.BatchID
	c.RunTotals = res.RunTotals
	c.Done = res.Done
	c.Offset = res.Summary.NextOffset
	c.UpdatedAt = now
	return true
}
