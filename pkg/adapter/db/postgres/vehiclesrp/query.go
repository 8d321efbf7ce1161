package vehiclesrp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/core/model"
)

type gVehicle struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid"`
	License string
}

func (gv *gVehicle) TableName() string {
	return "vehicles"
}

func (gv *gVehicle) Model() *model.Vehicle {
	return &model.Vehicle{ID: gv.ID, License: gv.License}
}

func Find[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.Vehicle, error) {
	gv := &gVehicle{}
	err := q.GORM(ctx).Where("id = ?", id).Take(gv).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", postgres.MapError(err))
	}
	return gv.Model(), nil
}
