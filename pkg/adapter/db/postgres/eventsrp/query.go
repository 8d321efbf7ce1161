package eventsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/vehicle-access/pkg/adapter/db/postgres"
	"github.com/momeni/vehicle-access/pkg/core/model"
	"github.com/momeni/vehicle-access/pkg/core/repo"
	"gorm.io/gorm/clause"
)

type gEvent struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	VehicleID    uuid.UUID `gorm:"type:uuid"`
	CredentialID uuid.UUID `gorm:"type:uuid"`
	EntryTime    time.Time
	ExitTime     *time.Time

	// License is only read by joining the vehicles table.
	License string `gorm:"->"`
}

func (ge *gEvent) TableName() string {
	return "access_events"
}

func (ge *gEvent) Model() *model.AccessEvent {
	return &model.AccessEvent{
		ID:           ge.ID,
		VehicleID:    ge.VehicleID,
		CredentialID: ge.CredentialID,
		EntryTime:    ge.EntryTime.UTC(),
		ExitTime:     utc(ge.ExitTime),
		License:      ge.License,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// FindOpen locks and returns the open event of vehicleID. The row lock
// is kept until the end of the transaction, so a concurrent toggle of
// the same vehicle (on another server instance) waits for it.
func FindOpen(ctx context.Context, tx *postgres.Tx, vehicleID uuid.UUID) (*model.AccessEvent, error) {
	ge := &gEvent{}
	err := tx.GORM(ctx).Clauses(
		clause.Locking{Strength: "UPDATE"},
	).Where(
		"vehicle_id = ? AND exit_time IS NULL", vehicleID,
	).Take(ge).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", postgres.MapError(err))
	}
	return ge.Model(), nil
}

// Create inserts an open event. The access_events_one_open partial
// unique index rejects it if vehicleID has another open event.
func Create(
	ctx context.Context,
	tx *postgres.Tx,
	vehicleID, credentialID uuid.UUID,
	entryTime time.Time,
) (*model.AccessEvent, error) {
	ge := &gEvent{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		CredentialID: credentialID,
		EntryTime:    entryTime.UTC(),
	}
	if err := tx.GORM(ctx).Create(ge).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", postgres.MapError(err))
	}
	return ge.Model(), nil
}

// Close sets the exit time of the eventID event if it is still open.
func Close(
	ctx context.Context,
	tx *postgres.Tx,
	eventID uuid.UUID,
	exitTime time.Time,
) (*model.AccessEvent, error) {
	var ges []gEvent
	res := tx.GORM(ctx).Model(&ges).Clauses(clause.Returning{}).Where(
		"id = ? AND exit_time IS NULL", eventID,
	).Update("exit_time", exitTime.UTC())
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("update: %w", postgres.MapError(err))
	}
	if n := len(ges); n != 1 {
		return nil, fmt.Errorf(
			"%w: expected one open event, but got %d", repo.ErrNotFound, n,
		)
	}
	return ges[0].Model(), nil
}

// Query lists events which were entered in the [from, until) range
// with the most recent entries first.
func Query[Q postgres.Queryer](
	ctx context.Context, q Q, from, until *time.Time,
) ([]model.AccessEvent, error) {
	gdb := q.GORM(ctx).Table("access_events").Select(
		"access_events.*, vehicles.license",
	).Joins(
		"JOIN vehicles ON vehicles.id = access_events.vehicle_id",
	)
	if from != nil {
		gdb = gdb.Where("access_events.entry_time >= ?", from.UTC())
	}
	if until != nil {
		gdb = gdb.Where("access_events.entry_time < ?", until.UTC())
	}
	var ges []gEvent
	err := gdb.Order("access_events.entry_time DESC").Find(&ges).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", postgres.MapError(err))
	}
	events := make([]model.AccessEvent, 0, len(ges))
	for i := range ges {
		events = append(events, *ges[i].Model())
	}
	return events, nil
}

func CountOpen[Q postgres.Queryer](ctx context.Context, q Q) (int, error) {
	var n int64
	err := q.GORM(ctx).Model(&gEvent{}).Where(
		"exit_time IS NULL",
	).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count: %w", postgres.MapError(err))
	}
	return int(n), nil
}
