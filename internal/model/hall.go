package model

// Hall is a seating hall that events may be held in.  Its layout is
// supplied externally and already validated; this service only needs
// the places that belong to it.
type Hall struct {
	ID   uint64 `json:"id"`   // halls.id
	Name string `json:"name"` // halls.name
}
