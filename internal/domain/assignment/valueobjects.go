package assignment

// Status is the lifecycle status of a credit assignment.
//
// Note that disabling auto-renewal is not a status change: a "cancelled"
// advisor intent keeps the row active until end_date. StatusCancelled is for
// rows terminated administratively before their paid period ran out.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// IsRetired reports whether a row is eligible for reuse by a new assignment
// request for the same (advisor, startup) pair.
func (s Status) IsRetired() bool {
	return s == StatusExpired || s == StatusCancelled
}

// CanTransitionTo encodes the legal state machine. Retired rows only become
// active again through the explicit reuse path (Reactivate), which resets the
// validity window together with the status.
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive:    {StatusExpired, StatusCancelled},
		StatusExpired:   {StatusActive},
		StatusCancelled: {StatusActive},
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
	StatusExpired:   true,
	StatusCancelled: true,
}
