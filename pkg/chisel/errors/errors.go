// Package errors holds the sentinel errors shared by chisel's pipeline stages.
// Callers wrap them with context and test with errors.Is.
package errors

import "errors"

var (
	// Input errors 📁
	ErrNotAFile = errors.New("❌ not a regular file")
	ErrNotAZip  = errors.New("❌ not a zip archive")

	// Document errors 📄
	ErrMissingMetadata   = errors.New("❌ bundle has no metadata/metadata.yml")
	ErrMalformedDocument = errors.New("❌ malformed document")
	ErrMissingField      = errors.New("❌ required field missing")

	// Archive errors 📦
	ErrUnsupportedCompression = errors.New("❌ unsupported compression")

	// Reported as warnings only ⚠️
	ErrUnknownReference = errors.New("⚠️ unknown reference")
)
