package services

// Actor identifies who performs an operation. Handlers pass it explicitly;
// services never read identity from ambient state.
type Actor struct {
	ID        uint
	IP        string
	UserAgent string
}

// SystemActor performs background work such as the reconciliation sweep
var SystemActor = Actor{}

// IsSystem reports whether no user is behind the action
func (a Actor) IsSystem() bool {
	return a.ID == 0
}

func (a Actor) ref() *uint {
	if a.IsSystem() {
		return nil
	}
	id := a.ID
	return &id
}
