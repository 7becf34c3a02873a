package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to value graph
	PhaseEncode   Phase = "encode"   // value graph to bytes
	PhaseValidate Phase = "validate" // graph construction and interop
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedVersion    Kind = "unsupported_version"
	KindTruncatedInput        Kind = "truncated_input"
	KindUnknownTag            Kind = "unknown_tag"
	KindLengthMismatch        Kind = "length_mismatch"
	KindInvalidView           Kind = "invalid_view"
	KindUnknownReference      Kind = "unknown_reference"
	KindDuplicateBinding      Kind = "duplicate_binding"
	KindDepthLimitExceeded    Kind = "depth_limit_exceeded"
	KindUnencodableHostObject Kind = "unencodable_host_object"
	KindInvalidData           Kind = "invalid_data"
	KindUnsupported           Kind = "unsupported"
)

// NoOffset marks an error that is not tied to a byte position.
const NoOffset = -1

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// OffsetOf returns the byte offset recorded on err, or NoOffset.
func OffsetOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Offset
	}
	return NoOffset
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset where the problem was detected
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedVersion creates an error for a wire format version outside the accepted window
func UnsupportedVersion(offset int, version uint32, minVersion, maxVersion uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnsupportedVersion,
		Offset: offset,
		Detail: fmt.Sprintf("wire format version %d not in [%d, %d]", version, minVersion, maxVersion),
		Value:  version,
	}
}

// TruncatedInput creates an error for a read past the end of the input
func TruncatedInput(offset, want, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncatedInput,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d left", want, have),
	}
}

// UnknownTag creates an error for an unrecognized tag byte
func UnknownTag(offset int, what string, tag byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownTag,
		Offset: offset,
		Detail: fmt.Sprintf("unknown %s tag 0x%02x (%q)", what, tag, rune(tag)),
		Value:  tag,
	}
}

// LengthMismatch creates an error for a declared count that disagrees with what was parsed
func LengthMismatch(offset int, what string, declared, actual uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindLengthMismatch,
		Offset: offset,
		Detail: fmt.Sprintf("%s: declared %d, parsed %d", what, declared, actual),
	}
}

// InvalidView creates an error for a buffer view that does not fit its buffer
func InvalidView(offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidView,
		Offset: offset,
		Detail: detail,
	}
}

// UnknownReference creates an error for an object ID that was never allocated
func UnknownReference(phase Phase, offset int, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownReference,
		Offset: offset,
		Detail: fmt.Sprintf("object id %d was never allocated", id),
		Value:  id,
	}
}

// DuplicateBinding creates an error for a second bind of the same object ID
func DuplicateBinding(id uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDuplicateBinding,
		Offset: NoOffset,
		Detail: fmt.Sprintf("object id %d already bound", id),
		Value:  id,
	}
}

// DepthLimitExceeded creates an error for nesting deeper than the configured maximum
func DepthLimitExceeded(offset, limit int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDepthLimitExceeded,
		Offset: offset,
		Detail: fmt.Sprintf("nesting exceeds %d levels", limit),
		Value:  limit,
	}
}

// UnencodableHostObject creates an error for a host object that cannot be written
func UnencodableHostObject(path []string, cause error) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnencodableHostObject,
		Offset: NoOffset,
		Path:   path,
		Detail: "host object payload cannot be encoded",
		Cause:  cause,
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, offset int, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: offset,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Offset: offset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: OffsetOf(cause),
		Detail: detail,
		Cause:  cause,
	}
}
