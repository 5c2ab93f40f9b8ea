package pool

import "github.com/halcyon-labs/suipool/types"

// ObjectRegistry is the in-memory index of the objects a pool currently
// owns. It remembers insertion order so split candidates can be offered
// newest-first. Not safe for concurrent use; the owning pool serializes
// access.
type ObjectRegistry struct {
	objects map[types.ObjectID]types.OwnedObject
	order   []types.ObjectID
}

// NewObjectRegistry creates an empty registry.
func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{objects: make(map[types.ObjectID]types.OwnedObject)}
}

// Add inserts obj, or refreshes it in place when the id is already tracked.
func (r *ObjectRegistry) Add(obj types.OwnedObject) {
	if _, ok := r.objects[obj.ObjectID]; !ok {
		r.order = append(r.order, obj.ObjectID)
	}
	r.objects[obj.ObjectID] = obj
}

// Delete removes the object with the given id, if tracked.
func (r *ObjectRegistry) Delete(id types.ObjectID) {
	if _, ok := r.objects[id]; !ok {
		return
	}
	delete(r.objects, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the tracked object with the given id.
func (r *ObjectRegistry) Get(id types.ObjectID) (types.OwnedObject, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// Has reports whether id is tracked.
func (r *ObjectRegistry) Has(id types.ObjectID) bool {
	_, ok := r.objects[id]
	return ok
}

// Len returns the number of tracked objects.
func (r *ObjectRegistry) Len() int { return len(r.objects) }

// All returns a copy of the tracked objects keyed by id.
func (r *ObjectRegistry) All() map[types.ObjectID]types.OwnedObject {
	out := make(map[types.ObjectID]types.OwnedObject, len(r.objects))
	for id, obj := range r.objects {
		out[id] = obj
	}
	return out
}

// Snapshot returns the tracked objects newest-first. The slice is a copy;
// mutating the registry does not invalidate it.
func (r *ObjectRegistry) Snapshot() []types.OwnedObject {
	out := make([]types.OwnedObject, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.objects[r.order[i]])
	}
	return out
}

// Coins returns the subset of tracked objects that can pay for gas.
func (r *ObjectRegistry) Coins() map[types.ObjectID]types.OwnedObject {
	out := make(map[types.ObjectID]types.OwnedObject)
	for id, obj := range r.objects {
		if obj.IsGasCoin() {
			out[id] = obj
		}
	}
	return out
}

// Clear drops every tracked object.
func (r *ObjectRegistry) Clear() {
	r.objects = make(map[types.ObjectID]types.OwnedObject)
	r.order = nil
}
