// Package journal records settled orders outside the process. Journals are
// write-only: the catalog is never rebuilt from them.
package journal

import (
	"context"
	"errors"

	models "retail-inventory/model"
)

// Journal receives every settled order.
type Journal interface {
	RecordOrder(ctx context.Context, order models.Order) error
}

// Nop discards orders.
type Nop struct{}

func (Nop) RecordOrder(context.Context, models.Order) error { return nil }

// Multi fans an order out to several journals. Every journal is tried; the
// errors are joined.
type Multi []Journal

func (m Multi) RecordOrder(ctx context.Context, order models.Order) error {
	var err error
	for _, j := range m {
		err = errors.Join(err, j.RecordOrder(ctx, order))
	}
	return err
}
