package ports

import (
	"context"

	"gobiome/domain/biom"
)

// TableReader loads an abundance table and its sample group assignment from
// an external artifact (spreadsheet, export, ...)
type TableReader interface {
	ReadTable(ctx context.Context) (*biom.AbundanceTable, biom.GroupAssignment, error)
}
