package valueobjects

// Status is the stored lifecycle state of a subscription. StatusExpired is
// never stored; it is derived at read time from an active subscription whose
// end date has passed.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive: {StatusPaused, StatusCancelled},
		StatusPaused: {StatusActive, StatusCancelled},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// StoredStatuses are the values allowed in persistence.
var StoredStatuses = map[Status]bool{
	StatusActive:    true,
	StatusPaused:    true,
	StatusCancelled: true,
}
