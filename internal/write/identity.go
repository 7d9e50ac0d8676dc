package write

import "context"

// Identity is the current and requested identifier of an updated entity.
type Identity struct {
	Current int64
	Desired int64
}

// Changed reports whether the update moves the entity to a new identifier.
func (i Identity) Changed() bool {
	return i.Desired != 0 && i.Desired != i.Current
}

// Target is the identifier the entity has once the update completes.
func (i Identity) Target() int64 {
	if i.Changed() {
		return i.Desired
	}
	return i.Current
}

// Rekey holds the store operations an identifier change is built from.
type Rekey struct {
	// Copy inserts a duplicate of the entity under a new identifier.
	Copy func(ctx context.Context, from, to int64) error
	// Update writes the requested fields to the entity with identifier id.
	Update func(ctx context.Context, id int64) error
	// Relink moves dependent rows from one identifier to another.
	Relink func(ctx context.Context, from, to int64) error
	// Delete removes the entity with identifier id.
	Delete func(ctx context.Context, id int64) error
}

// UpdatePlan builds the plan for an update. When the identifier changes the
// plan copies the entity to the new identifier, updates the copy, relinks
// dependents and deletes the original; the plain update by the current
// identifier is not part of that plan. Otherwise the plan is the plain
// update alone.
func UpdatePlan(name string, id Identity, ops Rekey) Plan {
	p := Plan{Name: name}
	if !id.Changed() {
		return p.Then("update", func(ctx context.Context) error {
			return ops.Update(ctx, id.Current)
		})
	}
	return p.
		Then("copy", func(ctx context.Context) error {
			return ops.Copy(ctx, id.Current, id.Desired)
		}).
		Then("update", func(ctx context.Context) error {
			return ops.Update(ctx, id.Desired)
		}).
		Then("relink", func(ctx context.Context) error {
			return ops.Relink(ctx, id.Current, id.Desired)
		}).
		Then("delete", func(ctx context.Context) error {
			return ops.Delete(ctx, id.Current)
		})
}
