package blm

import "strings"

// PreviewResult is the first record of a file alongside its column names
type PreviewResult struct {
	Headings []string
	Row      []string
}

// Preview switches f to processing mode and returns its first record. The row is
// split on the field delimiter without trimming.
func Preview(f *File) (PreviewResult, error) {
	f.Processing(true)

	raw, err := f.Record(0)
	if err != nil {
		return PreviewResult{}, err
	}

	row := []string{string(raw)}
	if eof := f.EOF(); eof != 0 {
		row = strings.Split(string(raw), string([]byte{eof}))
	}
	return PreviewResult{Headings: f.Map(), Row: row}, nil
}

// priceQualifiers maps the PRICE_QUALIFIER codes used by property feeds to labels
var priceQualifiers = map[string]string{
	"0":  "Default",
	"2":  "Guide Price",
	"4":  "Offers in Excess of",
	"5":  "OIRO",
	"9":  "Fractional Ownership",
	"11": "Fractional Ownership",
}

// PriceQualifier returns the label for a price qualifier code. Unknown codes are
// returned unchanged.
func PriceQualifier(code string) string {
	if label, ok := priceQualifiers[strings.TrimSpace(code)]; ok {
		return label
	}
	return code
}
