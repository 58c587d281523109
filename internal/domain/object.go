package domain

// Object is the contract every mapped entity satisfies. Entities are
// allocated blank by the mapper and receive their identifier through SetID
// before any other field is populated.
type Object interface {
	ID() int64
	SetID(id int64)
}

// Base carries the persisted identifier. Embed it in entity structs.
type Base struct {
	id int64
}

// ID returns the persisted identifier.
func (b *Base) ID() int64 { return b.id }

// SetID assigns the persisted identifier.
func (b *Base) SetID(id int64) { b.id = id }
