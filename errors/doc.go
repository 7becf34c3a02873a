// Package errors provides structured error types for the v8value codec.
//
// Errors are categorized by Phase (decode, encode or validate) and Kind
// (the taxonomy of the wire format: truncated input, unknown tag, invalid
// view and so on). Decode errors carry the byte offset where the problem
// was detected.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
//		Offset(42).
//		Detail("dense array: declared %d, parsed %d", 3, 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TruncatedInput(offset, 8, 3)
//	err := errors.UnknownReference(errors.PhaseDecode, offset, id)
//
// All errors implement the standard error interface and support errors.Is/As.
// KindOf extracts the Kind from any wrapped chain.
package errors
