package wire

// Status is the result code carried by engine events.
type Status uint8

const (
	// StatusOK indicates the operation completed successfully.
	StatusOK Status = 0

	// StatusFailed indicates a generic failure (rejected by the controller).
	StatusFailed Status = 1

	// StatusBufferFull indicates the request would exceed the routing table
	// or a per-entry capacity.
	StatusBufferFull Status = 2

	// StatusSemanticError indicates a conflicting request, such as an AID
	// already routed to another target.
	StatusSemanticError Status = 3

	// StatusInvalidParam indicates an invalid or unknown parameter.
	StatusInvalidParam Status = 4

	// StatusNoMemory indicates a buffer allocation failure.
	StatusNoMemory Status = 5

	// StatusTransportFailure indicates the transport could not send a command.
	StatusTransportFailure Status = 6

	// StatusTimeout indicates an operation did not complete in time.
	StatusTimeout Status = 7
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusBufferFull:
		return "BUFFER_FULL"
	case StatusSemanticError:
		return "SEMANTIC_ERROR"
	case StatusInvalidParam:
		return "INVALID_PARAM"
	case StatusNoMemory:
		return "NO_MEMORY"
	case StatusTransportFailure:
		return "TRANSPORT_FAILURE"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// IsOK returns true if the status indicates success.
func (s Status) IsOK() bool {
	return s == StatusOK
}

// NCIStatus is a status byte reported by the controller in responses and
// notifications.
type NCIStatus uint8

// Controller status codes used by the routing and NFCEE command families.
const (
	NCIStatusOK             NCIStatus = 0x00
	NCIStatusRejected       NCIStatus = 0x01
	NCIStatusFailed         NCIStatus = 0x03
	NCIStatusSemanticError  NCIStatus = 0x06
	NCIStatusInvalidParam   NCIStatus = 0x09
	NCIStatusNFCEETransmit  NCIStatus = 0xC2
	NCIStatusNFCEEProtocol  NCIStatus = 0xC3
	NCIStatusNFCEETimeout   NCIStatus = 0xC4
	NCIStatusNFCEEInterface NCIStatus = 0xC0
)

// String returns the controller status name.
func (s NCIStatus) String() string {
	switch s {
	case NCIStatusOK:
		return "OK"
	case NCIStatusRejected:
		return "REJECTED"
	case NCIStatusFailed:
		return "FAILED"
	case NCIStatusSemanticError:
		return "SEMANTIC_ERROR"
	case NCIStatusInvalidParam:
		return "INVALID_PARAM"
	case NCIStatusNFCEETransmit:
		return "NFCEE_TRANSMISSION_ERROR"
	case NCIStatusNFCEEProtocol:
		return "NFCEE_PROTOCOL_ERROR"
	case NCIStatusNFCEETimeout:
		return "NFCEE_TIMEOUT_ERROR"
	case NCIStatusNFCEEInterface:
		return "NFCEE_INTERFACE_ACTIVATION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Status converts a controller status to an engine status.
func (s NCIStatus) Status() Status {
	switch s {
	case NCIStatusOK:
		return StatusOK
	case NCIStatusSemanticError:
		return StatusSemanticError
	case NCIStatusInvalidParam:
		return StatusInvalidParam
	case NCIStatusNFCEETimeout:
		return StatusTimeout
	default:
		return StatusFailed
	}
}
