// @lixen: #focus{pipeline[frame,split]}
// Package frame delimits image blobs inside a chunked byte stream.
//
// Boundaries are found by searching for the format's start marker. There is no
// length prefix: a blob ends where the next marker begins, so the most recent
// blob stays pending until another marker arrives.
package frame

import "bytes"

// MarkerPNG is the first four bytes of the PNG signature
var MarkerPNG = []byte{0x89, 'P', 'N', 'G'}

// Splitter buffers stream bytes and cuts them into blobs at marker boundaries.
// Not safe for concurrent use.
type Splitter struct {
	marker []byte
	buf    []byte

	// Prefix of buf already searched without a match; the next search
	// resumes len(marker)-1 bytes before it to catch a straddling marker
	scanned int
}

// NewSplitter creates a splitter for the given marker. An empty marker selects MarkerPNG.
func NewSplitter(marker []byte) *Splitter {
	if len(marker) == 0 {
		marker = MarkerPNG
	}
	m := make([]byte, len(marker))
	copy(m, marker)
	return &Splitter{marker: m}
}

// Marker returns a copy of the boundary marker
func (s *Splitter) Marker() []byte {
	return bytes.Clone(s.marker)
}

// Feed appends chunk to the buffer and returns every blob completed by it, in stream order.
// The search starts at offset 1, so the marker opening the current blob never
// counts as a new boundary.
func (s *Splitter) Feed(chunk []byte) [][]byte {
	s.buf = append(s.buf, chunk...)

	var blobs [][]byte
	for len(s.buf) > 1 {
		from := max(1, s.scanned-len(s.marker)+1)
		k := bytes.Index(s.buf[from:], s.marker)
		if k < 0 {
			s.scanned = len(s.buf)
			break
		}
		k += from

		blob := make([]byte, k)
		copy(blob, s.buf[:k])
		blobs = append(blobs, blob)

		s.buf = s.buf[k:]
		s.scanned = 0
	}

	return blobs
}

// Pending returns the number of buffered bytes not yet emitted
func (s *Splitter) Pending() int {
	return len(s.buf)
}

// Flush returns the buffered tail as a final blob and empties the buffer.
// Returns nil if nothing is buffered.
func (s *Splitter) Flush() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	blob := make([]byte, len(s.buf))
	copy(blob, s.buf)
	s.Reset()
	return blob
}

// Reset drops all buffered bytes
func (s *Splitter) Reset() {
	s.buf = s.buf[:0]
	s.scanned = 0
}
