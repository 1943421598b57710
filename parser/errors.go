package parser

import "errors"

var (
	// ErrMalformedDocument indicates raw bytes no parsing path could read.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptyDocument indicates a document with no extractable text.
	ErrEmptyDocument = errors.New("document has no extractable text")
)
