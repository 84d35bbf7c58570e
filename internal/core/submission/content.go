// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import "time"

// SourceFormat is the detected format of a source package.
type SourceFormat string

const (
	FormatUnknown SourceFormat = "unknown"
	FormatInvalid SourceFormat = "invalid"
	FormatTeX     SourceFormat = "tex"
	FormatPDFTeX  SourceFormat = "pdftex"
	FormatPS      SourceFormat = "ps"
	FormatHTML    SourceFormat = "html"
	FormatPDF     SourceFormat = "pdf"
)

// SourceContent describes the uploaded source package.
type SourceContent struct {
	Identifier       string       `json:"identifier"`
	Checksum         string       `json:"checksum"`
	UncompressedSize int64        `json:"uncompressed_size"`
	CompressedSize   int64        `json:"compressed_size"`
	SourceFormat     SourceFormat `json:"source_format"`
	ContentType      string       `json:"content_type"`
}

// Preview describes the compiled rendering of a source package.
type Preview struct {
	SourceID        string    `json:"source_id"`
	SourceChecksum  string    `json:"source_checksum"`
	PreviewChecksum string    `json:"preview_checksum"`
	SizeBytes       int64     `json:"size_bytes"`
	Added           time.Time `json:"added"`
}

// Accepted upload media types for source packages.
var sourceContentTypes = map[string]struct{}{
	"application/gzip":     {},
	"application/x-gzip":   {},
	"application/tar":      {},
	"application/x-tar":    {},
	"application/tar+gzip": {},
}

// IsSourceContentType reports whether contentType may carry a source package.
func IsSourceContentType(contentType string) bool {
	_, ok := sourceContentTypes[contentType]
	return ok
}
