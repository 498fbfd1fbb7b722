package visionary

import "fmt"

// ColaError is the device-side 16-bit CoLa error code carried by error
// responses (tag "sFA"). Values and meanings are taken from
// original_source's CoLaError.h verbatim.
type ColaError int32

const (
	// ColaErrNetworkError is a sentinel for transport-level failures; it
	// is never sent on the wire by the device itself.
	ColaErrNetworkError ColaError = -1
	// ColaErrOK indicates success.
	ColaErrOK ColaError = 0
	// ColaErrMethodAccessDenied: wrong user level, access to method not allowed.
	ColaErrMethodAccessDenied ColaError = 1
	// ColaErrMethodUnknownIndex: method with an unknown Sopas index.
	ColaErrMethodUnknownIndex ColaError = 2
	// ColaErrVariableUnknownIndex: variable with an unknown Sopas index.
	ColaErrVariableUnknownIndex ColaError = 3
	// ColaErrLocalConditionFailed: a value exceeds the allowed min/max for the variable.
	ColaErrLocalConditionFailed ColaError = 4
	// ColaErrInvalidData is deprecated, no longer emitted by current firmware.
	ColaErrInvalidData ColaError = 5
	// ColaErrUnknownError is deprecated, no longer emitted by current firmware.
	ColaErrUnknownError ColaError = 6
	// ColaErrBufferOverflow: communication buffer too small for the data to serialize.
	ColaErrBufferOverflow ColaError = 7
	// ColaErrBufferUnderflow: more data expected than the buffer contained.
	ColaErrBufferUnderflow ColaError = 8
	// ColaErrUnknownType: a variable has a type unknown to this firmware/SDK pairing.
	ColaErrUnknownType ColaError = 9
	// ColaErrVariableWriteAccessDenied: variable is read-only.
	ColaErrVariableWriteAccessDenied ColaError = 10
	// ColaErrUnknownCmdForNameserver: name-based command the nameserver does not understand.
	ColaErrUnknownCmdForNameserver ColaError = 11
	// ColaErrUnknownColaCommand: command undefined by the CoLa protocol.
	ColaErrUnknownColaCommand ColaError = 12
	// ColaErrMethodServerBusy: only one command at a time is allowed to an SRT device.
	ColaErrMethodServerBusy ColaError = 13
	// ColaErrFlexOutOfBounds: an array was accessed past its maximum length.
	ColaErrFlexOutOfBounds ColaError = 14
	// ColaErrEventRegUnknownIndex: event registration index is unknown.
	ColaErrEventRegUnknownIndex ColaError = 15
	// ColaErrValueUnderflow: value too large to fit into the value field.
	ColaErrValueUnderflow ColaError = 16
	// ColaErrAInvalidCharacter: non-alphanumeric character (CoLa-A only).
	ColaErrAInvalidCharacter ColaError = 17
	// ColaErrOsaiNoMessage: SRTOS could not create an OS message for a GET.
	ColaErrOsaiNoMessage ColaError = 18
	// ColaErrOsaiNoAnswerMessage: same as OsaiNoMessage but for a PUT.
	ColaErrOsaiNoAnswerMessage ColaError = 19
	// ColaErrInternal: internal firmware error, likely a null parameter pointer.
	ColaErrInternal ColaError = 20
	// ColaErrHubAddressCorrupted: Sopas hub address too short or too long.
	ColaErrHubAddressCorrupted ColaError = 21
	// ColaErrHubAddressDecoding: Sopas hub address cannot be decoded.
	ColaErrHubAddressDecoding ColaError = 22
	// ColaErrHubAddressExceeded: too many hubs in the address.
	ColaErrHubAddressExceeded ColaError = 23
	// ColaErrHubAddressBlankExpected: expected blank not found while parsing a hub address.
	ColaErrHubAddressBlankExpected ColaError = 24
	// ColaErrAsyncMethodsSuppressed: async method call on a device built without async method support.
	ColaErrAsyncMethodsSuppressed ColaError = 25
	// ColaErrComplexArraysNotSupported: complex array encountered on a device built without recursion support.
	ColaErrComplexArraysNotSupported ColaError = 32
	// ColaErrSessionNoResources: CoLa-2 session cannot be created, no sessions available.
	ColaErrSessionNoResources ColaError = 33
	// ColaErrSessionUnknownID: CoLa-2 session ID invalid, timed out, or never existed.
	ColaErrSessionUnknownID ColaError = 34
	// ColaErrCannotConnect: requested connection could not be established.
	ColaErrCannotConnect ColaError = 35
	// ColaErrInvalidPort: the given routing PortId does not exist.
	ColaErrInvalidPort ColaError = 36
	// ColaErrScanAlreadyActive: a UDP scan is already running.
	ColaErrScanAlreadyActive ColaError = 37
	// ColaErrOutOfTimers: no more timer objects available for SOPAS scan.
	ColaErrOutOfTimers ColaError = 38
	// ColaErrWriteModeNotEnabled: device is in RUN mode, writes are not currently allowed.
	ColaErrWriteModeNotEnabled ColaError = 39
	// ColaErrSetPortFailed: internal SOPAS scan error.
	ColaErrSetPortFailed ColaError = 40
	// ColaErrIOLinkFuncTempNotAvailable: IO-Link function temporarily unavailable.
	ColaErrIOLinkFuncTempNotAvailable ColaError = 256
	// ColaErrUnknown: unknown error, thrown internally for an unrecognized scan command.
	ColaErrUnknown ColaError = 32767
)

var colaErrorNames = map[ColaError]string{
	ColaErrNetworkError:               "network-error",
	ColaErrOK:                         "ok",
	ColaErrMethodAccessDenied:         "method-access-denied",
	ColaErrMethodUnknownIndex:         "method-unknown-index",
	ColaErrVariableUnknownIndex:       "variable-unknown-index",
	ColaErrLocalConditionFailed:       "local-condition-failed",
	ColaErrInvalidData:                "invalid-data",
	ColaErrUnknownError:               "unknown-error",
	ColaErrBufferOverflow:             "buffer-overflow",
	ColaErrBufferUnderflow:            "buffer-underflow",
	ColaErrUnknownType:                "unknown-type",
	ColaErrVariableWriteAccessDenied:  "variable-write-access-denied",
	ColaErrUnknownCmdForNameserver:    "unknown-cmd-for-nameserver",
	ColaErrUnknownColaCommand:        "unknown-cola-command",
	ColaErrMethodServerBusy:           "method-server-busy",
	ColaErrFlexOutOfBounds:            "flex-out-of-bounds",
	ColaErrEventRegUnknownIndex:       "event-reg-unknown-index",
	ColaErrValueUnderflow:             "value-underflow",
	ColaErrAInvalidCharacter:          "cola-a-invalid-character",
	ColaErrOsaiNoMessage:              "osai-no-message",
	ColaErrOsaiNoAnswerMessage:        "osai-no-answer-message",
	ColaErrInternal:                   "internal",
	ColaErrHubAddressCorrupted:        "hub-address-corrupted",
	ColaErrHubAddressDecoding:         "hub-address-decoding",
	ColaErrHubAddressExceeded:         "hub-address-exceeded",
	ColaErrHubAddressBlankExpected:    "hub-address-blank-expected",
	ColaErrAsyncMethodsSuppressed:     "async-methods-suppressed",
	ColaErrComplexArraysNotSupported:  "complex-arrays-not-supported",
	ColaErrSessionNoResources:         "session-no-resources",
	ColaErrSessionUnknownID:           "session-unknown-id",
	ColaErrCannotConnect:              "cannot-connect",
	ColaErrInvalidPort:                "invalid-port",
	ColaErrScanAlreadyActive:          "scan-already-active",
	ColaErrOutOfTimers:                "out-of-timers",
	ColaErrWriteModeNotEnabled:        "write-mode-not-enabled",
	ColaErrSetPortFailed:              "set-port-failed",
	ColaErrIOLinkFuncTempNotAvailable: "io-link-func-temp-not-available",
	ColaErrUnknown:                    "unknown",
}

// String returns a lower-kebab-case label for the error code, or
// "cola-error(<n>)" for any value not in the known table.
func (e ColaError) String() string {
	if name, ok := colaErrorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("cola-error(%d)", int32(e))
}

// Error implements the error interface so a non-OK ColaError can be
// returned and compared directly with errors.Is.
func (e ColaError) Error() string { return e.String() }
