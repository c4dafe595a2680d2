package blm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Header keys understood by ParseHeader
const (
	KeyVersion       = "Version"
	KeyEOF           = "EOF"
	KeyEOR           = "EOR"
	KeyPropertyCount = "Property Count"
	KeyGeneratedDate = "Generated Date"
)

// Header is the metadata declared by the HEADER and DEFINITION sections
type Header struct {
	Version       string
	EOF           byte // Field delimiter
	EOR           byte // Record delimiter
	PropertyCount int
	GeneratedDate string
	Fields        []string // Column names from DEFINITION, in file order
}

// ParseHeader extracts the known keys from the trimmed HEADER content. Missing or
// unparsable values are left at their zero value.
func ParseHeader(header string) Header {
	var h Header
	h.Version, _ = HeaderValue(header, KeyVersion)
	h.GeneratedDate, _ = HeaderValue(header, KeyGeneratedDate)

	eof, _ := HeaderValue(header, KeyEOF)
	h.EOF = delimiter(eof)
	eor, _ := HeaderValue(header, KeyEOR)
	h.EOR = delimiter(eor)

	if count, err := HeaderValue(header, KeyPropertyCount); err == nil {
		h.PropertyCount, _ = strconv.Atoi(count)
	}
	return h
}

// HeaderValue returns the trimmed value of key in the HEADER content.
//
// The format writes keys as "Key : value", so a line matches when exactly one
// non-colon character sits between the key and the colon. Files that write
// "Key: value" are accepted as a fallback.
func HeaderValue(header, key string) (string, error) {
	quoted := regexp.QuoteMeta(key)
	for _, expr := range []string{
		`(?m)^` + quoted + `[^:]:\s*(.+)$`,
		`(?m)^` + quoted + `:\s*(.+)$`,
	} {
		if m := regexp.MustCompile(expr).FindStringSubmatch(header); m != nil {
			return strings.TrimSpace(m[1]), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingHeaderKey, key)
}

// delimiter resolves a header token to its delimiter byte. Tokens longer than one
// character carry the delimiter in their second position, e.g. '^' or |~.
func delimiter(value string) byte {
	switch {
	case len(value) > 1:
		return value[1]
	case len(value) == 1:
		return value[0]
	default:
		return 0
	}
}

// ParseDefinition splits DEFINITION content into column names. The final
// character (the record delimiter closing the line) is dropped, and so is a
// trailing empty name left by a closing field delimiter.
func ParseDefinition(definition string, eof byte) []string {
	definition = strings.TrimSpace(definition)
	if definition != "" {
		definition = definition[:len(definition)-1]
	}

	if eof == 0 {
		if definition == "" {
			return []string{}
		}
		return []string{definition}
	}

	fields := strings.Split(definition, string([]byte{eof}))
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}
