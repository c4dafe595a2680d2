package blm

import (
	"fmt"
	"io"
	"strings"
)

// buildBLM renders a BLM file. eofToken and eorToken are written verbatim as the
// header values, e.g. "'^'" or "|~"; eof and eor are the delimiters they encode.
func buildBLM(eofToken, eorToken string, eof, eor byte, fields []string, rows [][]string) string {
	var b strings.Builder
	sep := string([]byte{eof})
	term := string([]byte{eof, eor}) + "\n"

	b.WriteString("#HEADER#\n")
	b.WriteString("Version : 3\n")
	b.WriteString("EOF : " + eofToken + "\n")
	b.WriteString("EOR : " + eorToken + "\n")
	fmt.Fprintf(&b, "Property Count : %d\n", len(rows))
	b.WriteString("Generated Date : 13-Jan-2024 15:12\n")
	b.WriteString("#DEFINITION#\n")
	b.WriteString(strings.Join(fields, sep) + term)
	b.WriteString("#DATA#\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, sep) + term)
	}
	b.WriteString("#END#\n")
	return b.String()
}

func sampleFields() []string {
	return []string{"AGENT_REF", "ADDRESS_1", "PRICE"}
}

func sampleRows() [][]string {
	return [][]string{
		{"1_001", "Fox Cottage", "250000"},
		{"1_002", "Mill House", "325000"},
		{"1_003", "The Old Forge", "410000"},
	}
}

func sampleBLM() string {
	return buildBLM("'^'", "'~'", '^', '~', sampleFields(), sampleRows())
}

// manyRows returns n rows of the sample schema
func manyRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("1_%04d", i), fmt.Sprintf("%d High Street", i), fmt.Sprintf("%d", 100000+i)}
	}
	return rows
}

// exactBLM has hand-computed offsets:
// HEADER tag 0, start 9, length 20; DEFINITION tag 29, start 42, length 6;
// DATA tag 48, start 55, length 6; END tag 61, start 67.
const exactBLM = "#HEADER#\nEOF : '^'\nEOR : '~'\n#DEFINITION#\nA^B^~\n#DATA#\n1^2^~\n#END#\n"

// countingReader counts Read calls so tests can tell whether the file was
// scanned again
type countingReader struct {
	io.ReadSeeker
	reads int
	bytes int
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadSeeker.Read(p)
	r.reads++
	r.bytes += n
	return n, err
}

// oneByteReader returns at most one byte per Read
type oneByteReader struct {
	r io.Reader
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return r.r.Read(p[:1])
}
