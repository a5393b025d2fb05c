package wire

// EEStatus is the NFCEE status carried by a discovery notification.
type EEStatus uint8

const (
	EEStatusEnabled  EEStatus = 0x00
	EEStatusDisabled EEStatus = 0x01
	EEStatusRemoved  EEStatus = 0x02
)

// String returns the status name.
func (s EEStatus) String() string {
	switch s {
	case EEStatusEnabled:
		return "ENABLED"
	case EEStatusDisabled:
		return "DISABLED"
	case EEStatusRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// EEState is the state carried by an NFCEE status notification.
type EEState uint8

const (
	EEStateUnrecoverableError EEState = 0x00
	EEStateInitStarted        EEState = 0x01
	EEStateInitCompleted      EEState = 0x02
)

// String returns the state name.
func (s EEState) String() string {
	switch s {
	case EEStateUnrecoverableError:
		return "UNRECOVERABLE_ERROR"
	case EEStateInitStarted:
		return "INIT_STARTED"
	case EEStateInitCompleted:
		return "INIT_COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// ListenMode is an RF technology and mode reported in an NFCEE discovery
// request.
type ListenMode uint8

const (
	ListenA      ListenMode = 0x80
	ListenB      ListenMode = 0x81
	ListenF      ListenMode = 0x82
	ListenBPrime ListenMode = 0x85
)

// String returns the listen mode name.
func (m ListenMode) String() string {
	switch m {
	case ListenA:
		return "LISTEN_A"
	case ListenB:
		return "LISTEN_B"
	case ListenF:
		return "LISTEN_F"
	case ListenBPrime:
		return "LISTEN_B_PRIME"
	default:
		return "UNKNOWN"
	}
}

// ActionTrigger identifies what caused an NFCEE action notification.
type ActionTrigger uint8

const (
	TriggerSelect     ActionTrigger = 0x00
	TriggerRFProtocol ActionTrigger = 0x01
	TriggerRFTech     ActionTrigger = 0x02
	TriggerAppInit    ActionTrigger = 0x10
)

// String returns the trigger name.
func (t ActionTrigger) String() string {
	switch t {
	case TriggerSelect:
		return "SELECT"
	case TriggerRFProtocol:
		return "RF_PROTOCOL"
	case TriggerRFTech:
		return "RF_TECHNOLOGY"
	case TriggerAppInit:
		return "APP_INIT"
	default:
		return "UNKNOWN"
	}
}
