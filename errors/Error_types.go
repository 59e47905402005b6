package errors

var (
	ErrUnknown             = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument     = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrNotFound            = New(ERR_NOT_FOUND, "not found")
	ErrProcessing          = New(ERR_PROCESSING, "error processing")
	ErrConfiguration       = New(ERR_CONFIGURATION, "configuration error")
	ErrContext             = New(ERR_CONTEXT, "context error")
	ErrContextCanceled     = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrError               = New(ERR_ERROR, "generic error")
	ErrInvalidPrecondition = New(ERR_INVALID_PRECONDITION, "invalid precondition")
	ErrDustOutput          = New(ERR_DUST_OUTPUT, "dust output")
	ErrRecordNotFound      = New(ERR_RECORD_NOT_FOUND, "record not found")
	ErrStaleRecord         = New(ERR_STALE_RECORD, "stale record")
	ErrEncoding            = New(ERR_ENCODING, "encoding error")
	ErrLedgerRejected      = New(ERR_LEDGER_REJECTED, "ledger rejected transaction")
	ErrServiceUnavailable  = New(ERR_SERVICE_UNAVAILABLE, "service unavailable")
	ErrServiceError        = New(ERR_SERVICE_ERROR, "service error")
	ErrStorageUnavailable  = New(ERR_STORAGE_UNAVAILABLE, "storage unavailable")
	ErrStorageError        = New(ERR_STORAGE_ERROR, "storage error")
	ErrNetwork             = New(ERR_NETWORK_ERROR, "network error")
	ErrNetworkTimeout      = New(ERR_NETWORK_TIMEOUT, "network timeout")
	ErrTimeout             = New(ERR_TIMEOUT, "timeout")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewNotFoundError(message string, params ...interface{}) error {
	return New(ERR_NOT_FOUND, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewContextError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT, message, params...)
}
func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewInvalidPreconditionError(message string, params ...interface{}) error {
	return New(ERR_INVALID_PRECONDITION, message, params...)
}
func NewDustOutputError(message string, params ...interface{}) error {
	return New(ERR_DUST_OUTPUT, message, params...)
}
func NewRecordNotFoundError(message string, params ...interface{}) error {
	return New(ERR_RECORD_NOT_FOUND, message, params...)
}
func NewStaleRecordError(message string, params ...interface{}) error {
	return New(ERR_STALE_RECORD, message, params...)
}
func NewEncodingError(message string, params ...interface{}) error {
	return New(ERR_ENCODING, message, params...)
}
func NewLedgerRejectedError(message string, params ...interface{}) error {
	return New(ERR_LEDGER_REJECTED, message, params...)
}
func NewServiceUnavailableError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_UNAVAILABLE, message, params...)
}
func NewServiceError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_ERROR, message, params...)
}
func NewStorageUnavailableError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_UNAVAILABLE, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewNetworkError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_ERROR, message, params...)
}
func NewNetworkTimeoutError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_TIMEOUT, message, params...)
}
func NewNetworkConnectionRefusedError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_CONNECTION_REFUSED, message, params...)
}
func NewNetworkInvalidResponseError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_INVALID_RESPONSE, message, params...)
}
func NewTimeoutError(message string, params ...interface{}) error {
	return New(ERR_TIMEOUT, message, params...)
}
