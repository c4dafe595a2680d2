package blm

// Errors
var (
	ErrMalformedFile    = &BLMError{"malformed BLM file"}
	ErrOutOfRange       = &BLMError{"record index out of range"}
	ErrMissingHeaderKey = &BLMError{"header key not found"}
	ErrUnknownField     = &BLMError{"unknown field"}
	ErrCacheMiss        = &BLMError{"index cache miss"}
	ErrClosed           = &BLMError{"file is closed"}
)

// BLMError represents a BLM reader error
type BLMError struct {
	Message string
}

func (e *BLMError) Error() string {
	return e.Message
}
