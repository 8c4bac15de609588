package source

// streaming.go prepares exported text files for parsing without loading
// them into memory:
//
//   - a leading UTF-8 byte order mark is dropped
//   - invalid UTF-8 is replaced with U+FFFD
//   - text is converted to NFC so headers and values compare byte-equal
//
// A countingReader wraps the result to report bytes consumed.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countingReader tracks bytes read from the underlying reader.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the percentage read, or 0 when the total is unknown.
func (r *countingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// wrapForStreaming counts raw bytes, then strips the BOM, repairs UTF-8 and
// normalizes to NFC.
func wrapForStreaming(r io.Reader, totalSize int64) (io.Reader, *countingReader) {
	counter := &countingReader{reader: r, Total: totalSize}
	t := transform.Chain(
		unicode.UTF8BOM.NewDecoder(),
		runes.ReplaceIllFormed(),
		norm.NFC,
	)
	return transform.NewReader(counter, t), counter
}
