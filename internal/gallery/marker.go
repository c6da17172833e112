package gallery

import (
	"bytes"
	"regexp"
	"strings"
)

// MarkerLiteral opens every gallery marker.
const MarkerLiteral = "[:gallery:"

// The name group is optional so that `[:gallery: ]` is still recognised and
// reported as malformed instead of being passed through as plain text.
var (
	markerPattern       = regexp.MustCompile(`\[:gallery:\s*(\S+)?\s*\]`)
	markerPrefixPattern = regexp.MustCompile(`^\[:gallery:\s*(\S+)?\s*\]`)
)

// Marker is a parsed `[:gallery: <name>]` occurrence. Start and End are byte
// offsets into the text the marker was found in.
type Marker struct {
	Name  string
	Raw   string
	Start int
	End   int
}

// Match returns the first gallery marker found in text. It returns (nil, nil)
// when text holds no marker and ErrMalformedMarker when a marker has no name.
func Match(text string) (*Marker, error) {
	if !strings.Contains(text, MarkerLiteral) {
		return nil, nil
	}
	loc := markerPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, nil
	}
	return markerFromIndex(text, loc)
}

// MatchPrefix matches a marker anchored at the start of b. The returned
// marker's End is the number of bytes the marker spans.
func MatchPrefix(b []byte) (*Marker, error) {
	marker, ok := ScanPrefix(b)
	if !ok {
		return nil, nil
	}
	if err := marker.Validate(); err != nil {
		return nil, err
	}
	return &marker, nil
}

// ScanPrefix is MatchPrefix without validation: a marker with no name is
// returned with an empty Name so callers can consume its bytes.
func ScanPrefix(b []byte) (Marker, bool) {
	if !bytes.HasPrefix(b, []byte(MarkerLiteral)) {
		return Marker{}, false
	}
	loc := markerPrefixPattern.FindSubmatchIndex(b)
	if loc == nil {
		return Marker{}, false
	}
	marker := Marker{
		Raw:   string(b[loc[0]:loc[1]]),
		Start: loc[0],
		End:   loc[1],
	}
	if loc[2] >= 0 {
		marker.Name = strings.TrimSpace(string(b[loc[2]:loc[3]]))
	}
	return marker, true
}

// MatchAll returns every marker in text in document order. Malformed markers
// are returned alongside the well formed ones with an empty Name; callers use
// Validate to turn them into errors.
func MatchAll(text string) []Marker {
	if !strings.Contains(text, MarkerLiteral) {
		return nil
	}
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	markers := make([]Marker, 0, len(locs))
	for _, loc := range locs {
		marker := Marker{
			Raw:   text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		}
		if loc[2] >= 0 {
			marker.Name = strings.TrimSpace(text[loc[2]:loc[3]])
		}
		markers = append(markers, marker)
	}
	return markers
}

// Validate reports ErrMalformedMarker when the marker carries no name.
func (m Marker) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return malformedMarkerError(m.Raw)
	}
	return nil
}

func markerFromIndex(text string, loc []int) (*Marker, error) {
	marker := &Marker{
		Raw:   text[loc[0]:loc[1]],
		Start: loc[0],
		End:   loc[1],
	}
	if loc[2] >= 0 {
		marker.Name = strings.TrimSpace(text[loc[2]:loc[3]])
	}
	if err := marker.Validate(); err != nil {
		return nil, err
	}
	return marker, nil
}
