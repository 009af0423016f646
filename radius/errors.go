package radius

import "fmt"

// InvalidFramingError is returned when the declared packet length disagrees with the
// size of the buffer being parsed.
type InvalidFramingError struct {
	Declared int
	Actual   int
}

func (e *InvalidFramingError) Error() string {
	return fmt.Sprintf("invalid framing: declared length %d, buffer has %d bytes", e.Declared, e.Actual)
}

// InvalidRequestAuthenticatorError is returned when the recomputed Request Authenticator
// of an Accounting-Request or Disconnect-Request does not match the one on the wire.
// Usually indicates a shared secret mismatch.
type InvalidRequestAuthenticatorError struct{}

func (e *InvalidRequestAuthenticatorError) Error() string {
	return "invalid request authenticator: shared secret mismatch likely"
}

// InvalidMessageAuthenticatorError is returned when the recomputed Message-Authenticator
// HMAC-MD5 does not match the one on the wire.
type InvalidMessageAuthenticatorError struct{}

func (e *InvalidMessageAuthenticatorError) Error() string {
	return "invalid message authenticator"
}

// MalformedAttributeError is returned when an attribute's declared length would make it
// extend past the end of the packet.
type MalformedAttributeError struct {
	Offset int
	Length int
	Total  int
}

func (e *MalformedAttributeError) Error() string {
	return fmt.Sprintf("malformed attribute at offset %d: length %d extends past packet end %d", e.Offset, e.Length, e.Total)
}

// UnknownAttributeError is returned when the dictionary has no entry for an attribute
// being serialized (fatal) or, informationally, when one could not be resolved while
// parsing (in which case the attribute is simply skipped, not surfaced as an error).
type UnknownAttributeError struct {
	Name string
	Code byte
}

func (e *UnknownAttributeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown attribute %q: not present in dictionary", e.Name)
	}
	return fmt.Sprintf("unknown attribute code %d: not present in dictionary", e.Code)
}

// UnsupportedAttributeTypeError is returned when the encoder has no rule for the
// declared type of an attribute, or the supplied value does not have the shape the
// declared type requires.
type UnsupportedAttributeTypeError struct {
	Name string
	Type string
}

func (e *UnsupportedAttributeTypeError) Error() string {
	return fmt.Sprintf("unsupported attribute type %q for attribute %q", e.Type, e.Name)
}

// DictionaryParseError is returned for a malformed dictionary line that cannot be safely
// skipped. Most malformed lines are silently skipped instead, to match FreeRADIUS behavior;
// this is reserved for lines that would otherwise corrupt the dictionary being built.
type DictionaryParseError struct {
	File string
	Line string
	Err  error
}

func (e *DictionaryParseError) Error() string {
	return fmt.Sprintf("dictionary parse error in %s: %q: %v", e.File, e.Line, e.Err)
}

func (e *DictionaryParseError) Unwrap() error { return e.Err }
