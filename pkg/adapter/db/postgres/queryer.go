package postgres

import (
	"context"

	"github.com/momeni/vehicle-access/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is the type constraint of generic repository functions which
// may run either with a connection or within a transaction.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer
	GORM(ctx context.Context) *gorm.DB
}
