package domain

import "context"

// WarehouseContext identifies who is calling and which warehouse they work from.
// It is passed explicitly into every operation.
type WarehouseContext struct {
	ActorID     uint
	WarehouseID *uint
}

// NewWarehouseContext builds a context for an actor with a configured warehouse
func NewWarehouseContext(actorID, warehouseID uint) WarehouseContext {
	return WarehouseContext{ActorID: actorID, WarehouseID: &warehouseID}
}

// CurrentWarehouseID returns the configured warehouse or ErrNoWarehouseConfigured
func (w WarehouseContext) CurrentWarehouseID() (uint, error) {
	if w.WarehouseID == nil || *w.WarehouseID == 0 {
		return 0, ErrNoWarehouseConfigured
	}
	return *w.WarehouseID, nil
}

// ResolveWarehouse returns the actor's warehouse id once it is known to exist
// and be active. A missing or inactive warehouse is ErrNoWarehouseAssigned.
func ResolveWarehouse(ctx context.Context, refs ReferenceRepository, actor WarehouseContext) (uint, error) {
	id, err := actor.CurrentWarehouseID()
	if err != nil {
		return 0, err
	}

	warehouse, err := refs.FindWarehouse(ctx, id)
	if err != nil {
		return 0, err
	}
	if !warehouse.Active {
		return 0, ErrNoWarehouseAssigned
	}
	return warehouse.ID, nil
}
