package domain

// Role of a control-channel connection inside a room.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// AdmissionState is a connection's position in the join state machine.
type AdmissionState int

const (
	Connecting AdmissionState = iota
	AutoAdmitted
	PendingApproval
	WaitingForHost
	Active
	Denied
	Disconnected
)

func (s AdmissionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case AutoAdmitted:
		return "auto_admitted"
	case PendingApproval:
		return "pending_approval"
	case WaitingForHost:
		return "waiting_for_host"
	case Active:
		return "active"
	case Denied:
		return "denied"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s AdmissionState) Terminal() bool {
	return s == Denied || s == Disconnected
}
