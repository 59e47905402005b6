package errors

import "fmt"

// ERR is the numeric error code carried by every *Error.
//
//nolint:revive,stylecheck // codes mirror the wire names used by the ledger tooling
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_INVALID_ARGUMENT ERR = 1
	ERR_NOT_FOUND        ERR = 2
	ERR_PROCESSING       ERR = 3
	ERR_CONFIGURATION    ERR = 4
	ERR_CONTEXT          ERR = 5
	ERR_CONTEXT_CANCELED ERR = 6
	ERR_ERROR            ERR = 9

	// bounty transition errors
	ERR_INVALID_PRECONDITION ERR = 20
	ERR_DUST_OUTPUT          ERR = 21
	ERR_RECORD_NOT_FOUND     ERR = 22
	ERR_STALE_RECORD         ERR = 23
	ERR_ENCODING             ERR = 24
	ERR_LEDGER_REJECTED      ERR = 25

	// infrastructure
	ERR_SERVICE_UNAVAILABLE        ERR = 40
	ERR_SERVICE_ERROR              ERR = 41
	ERR_STORAGE_UNAVAILABLE        ERR = 50
	ERR_STORAGE_ERROR              ERR = 51
	ERR_NETWORK_ERROR              ERR = 60
	ERR_NETWORK_TIMEOUT            ERR = 61
	ERR_NETWORK_CONNECTION_REFUSED ERR = 62
	ERR_NETWORK_INVALID_RESPONSE   ERR = 63
	ERR_TIMEOUT                    ERR = 70
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "NOT_FOUND",
	3:  "PROCESSING",
	4:  "CONFIGURATION",
	5:  "CONTEXT",
	6:  "CONTEXT_CANCELED",
	9:  "ERROR",
	20: "INVALID_PRECONDITION",
	21: "DUST_OUTPUT",
	22: "RECORD_NOT_FOUND",
	23: "STALE_RECORD",
	24: "ENCODING",
	25: "LEDGER_REJECTED",
	40: "SERVICE_UNAVAILABLE",
	41: "SERVICE_ERROR",
	50: "STORAGE_UNAVAILABLE",
	51: "STORAGE_ERROR",
	60: "NETWORK_ERROR",
	61: "NETWORK_TIMEOUT",
	62: "NETWORK_CONNECTION_REFUSED",
	63: "NETWORK_INVALID_RESPONSE",
	70: "TIMEOUT",
}

// Enum returns the symbolic name of the code.
func (x ERR) Enum() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return fmt.Sprintf("ERR(%d)", int32(x))
}

func (x ERR) String() string {
	return x.Enum()
}
