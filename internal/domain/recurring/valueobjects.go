package recurring

// Status is the lifecycle status of a recurring credit subscription
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

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanBill reports whether a billing-cycle payment may be applied
func (s Status) CanBill() bool {
	return s == StatusActive || s == StatusPaused
}

func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive:    {StatusPaused, StatusCancelled, StatusExpired},
		StatusPaused:    {StatusActive, StatusCancelled, StatusExpired},
		StatusCancelled: {},
		StatusExpired:   {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[Status]bool{
	StatusActive:    true,
	StatusPaused:    true,
	StatusCancelled: true,
	StatusExpired:   true,
}
