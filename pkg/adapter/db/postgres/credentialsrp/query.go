package credentialsrp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

type gCredential struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	Code      string
	VehicleID uuid.UUID `gorm:"type:uuid"`
}

func (gc *gCredential) TableName() string {
	return "credentials"
}

func (gc *gCredential) Model() *model.Credential {
	return &model.Credential{
		ID:        gc.ID,
		Code:      gc.Code,
		VehicleID: gc.VehicleID,
	}
}

// Resolve finds the credential which has the code string. Codes are
// unique, so at most one row may match.
func Resolve[Q postgres.Queryer](ctx context.Context, q Q, code string) (*model.Credential, error) {
	gc := &gCredential{}
	err := q.GORM(ctx).Where("code = ?", code).Take(gc).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", postgres.MapError(err))
	}
	return gc.Model(), nil
}
