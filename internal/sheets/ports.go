// Package sheets defines the outbound port for tabular exports.
package sheets

import "context"

// RowWriter replaces the export target's contents with the given rows
// (header included). The worker rewrites the whole sheet on every change;
// the target never feeds state back into the ledger.
type RowWriter interface {
	ReplaceRows(ctx context.Context, rows [][]any) error
}
