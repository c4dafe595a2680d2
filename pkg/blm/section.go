package blm

import "fmt"

// SectionName identifies one of the four tagged sections of a BLM file
type SectionName int

const (
	SectionHeader SectionName = iota
	SectionDefinition
	SectionData
	SectionEnd
)

// sectionOrder is the order sections must appear in the file
var sectionOrder = [...]SectionName{SectionHeader, SectionDefinition, SectionData, SectionEnd}

func (n SectionName) String() string {
	switch n {
	case SectionHeader:
		return "HEADER"
	case SectionDefinition:
		return "DEFINITION"
	case SectionData:
		return "DATA"
	case SectionEnd:
		return "END"
	default:
		return fmt.Sprintf("SectionName(%d)", int(n))
	}
}

// Tag returns the marker that introduces the section, e.g. "#DATA#"
func (n SectionName) Tag() string {
	return "#" + n.String() + "#"
}

// Section is the byte range of one section within the file
type Section struct {
	Name        SectionName
	TagOffset   int64 // Offset of the '#' that starts the tag line
	StartOffset int64 // First content byte, just past the tag line's newline
	Length      int64 // Content length up to the next section's tag; 0 for END
}

// End returns the offset one past the last content byte
func (s Section) End() int64 {
	return s.StartOffset + s.Length
}

// Sections holds every section of a file, indexed by SectionName
type Sections [len(sectionOrder)]Section

// Get returns the section with the given name
func (s Sections) Get(name SectionName) Section {
	return s[name]
}

// computeLengths derives each section's length from the tag of the section after it
func (s *Sections) computeLengths() {
	for i := 0; i+1 < len(sectionOrder); i++ {
		cur, next := sectionOrder[i], sectionOrder[i+1]
		length := s[next].TagOffset - s[cur].StartOffset
		if length < 0 {
			length = 0
		}
		s[cur].Length = length
	}
	s[SectionEnd].Length = 0
}
