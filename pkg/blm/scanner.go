package blm

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
)

// DefaultChunkSize is the number of bytes read per step while scanning
const DefaultChunkSize = 8192

// maxTagLength is the length of the longest section tag, "#DEFINITION#"
const maxTagLength = len("#DEFINITION#")

// sectionPatterns match a whole tag line, e.g. #DATA# followed by anything up to
// the newline
var sectionPatterns = func() map[SectionName]*regexp.Regexp {
	patterns := make(map[SectionName]*regexp.Regexp, len(sectionOrder))
	for _, name := range sectionOrder {
		patterns[name] = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name.Tag()) + `.*$`)
	}
	return patterns
}()

// SectionScanner locates the tagged sections of a BLM file in a single forward
// pass, holding only the unconsumed tail of the input in memory
type SectionScanner struct {
	r         io.Reader
	chunkSize int

	buf       []byte
	base      int64 // absolute offset of buf[0]
	lineStart bool  // buf[0] begins a line
	eof       bool
	next      int // position in sectionOrder of the next section to find
	sections  Sections
}

// NewSectionScanner creates a scanner reading from r, which must be positioned at
// the start of the file
func NewSectionScanner(r io.Reader, chunkSize int) *SectionScanner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &SectionScanner{
		r:         r,
		chunkSize: chunkSize,
		lineStart: true,
	}
}

// ScanSections is shorthand for NewSectionScanner(r, chunkSize).Scan()
func ScanSections(r io.Reader, chunkSize int) (Sections, error) {
	return NewSectionScanner(r, chunkSize).Scan()
}

// Scan reads until every section has been found or the input ends. A section
// that never appears yields ErrMalformedFile.
func (s *SectionScanner) Scan() (Sections, error) {
	chunk := make([]byte, s.chunkSize)
	for s.next < len(sectionOrder) && !s.eof {
		n, err := s.r.Read(chunk)
		s.buf = append(s.buf, chunk[:n]...)
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return Sections{}, fmt.Errorf("failed to read sections: %w", err)
		}
		s.consume()
	}

	if s.next < len(sectionOrder) {
		return Sections{}, fmt.Errorf("%w: section %s not found", ErrMalformedFile, sectionOrder[s.next])
	}

	s.sections.computeLengths()
	return s.sections, nil
}

// consume searches the buffer for the next expected tags and drops everything that
// can no longer contain one
func (s *SectionScanner) consume() {
	for s.next < len(sectionOrder) {
		if !s.lineStart {
			i := bytes.IndexByte(s.buf, '\n')
			if i < 0 {
				s.advance(len(s.buf))
				return
			}
			s.advance(i + 1)
			s.lineStart = true
		}

		name := sectionOrder[s.next]
		loc := sectionPatterns[name].FindIndex(s.buf)
		if loc == nil {
			break
		}
		// The tag line may continue in the next chunk
		if loc[1] == len(s.buf) && !s.eof {
			return
		}

		end := s.base + int64(loc[1])
		s.sections[name] = Section{
			Name:        name,
			TagOffset:   end - int64(loc[1]-loc[0]),
			StartOffset: end + 1,
		}
		s.next++
		s.advance(loc[1])
		s.lineStart = false
	}

	if i := bytes.LastIndexByte(s.buf, '\n'); i >= 0 {
		s.advance(i + 1)
		s.lineStart = true
		return
	}
	// A short line start may still grow into a tag
	if !s.lineStart || len(s.buf) >= maxTagLength {
		s.advance(len(s.buf))
		s.lineStart = false
	}
}

func (s *SectionScanner) advance(n int) {
	s.buf = s.buf[n:]
	s.base += int64(n)
	if len(s.buf) == 0 {
		s.buf = s.buf[:0:0]
	}
}
