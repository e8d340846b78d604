package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agenthands/edgeqc/internal/core/model"
)

const (
	ModeSubstring = "substring"
	ModeWord      = "word"
)

// Matcher finds which synonym of an entity occurs in an edge's supporting
// text. In word mode the occurrence must not be flanked by letters or digits.
type Matcher struct {
	Delimiter   string
	Placeholder string
	Mode        string
}

func NewMatcher(delimiter, placeholder, mode string) *Matcher {
	if delimiter == "" {
		delimiter = "|"
	}
	if mode == "" {
		mode = ModeSubstring
	}
	return &Matcher{Delimiter: delimiter, Placeholder: placeholder, Mode: mode}
}

// Segments returns the usable sentences of an edge.
func (m *Matcher) Segments(e model.Edge) []string {
	return e.SentenceSegments(m.Delimiter, m.Placeholder)
}

type occurrence struct {
	name     string
	span     string
	sentence int
}

// Match scans segments for the record's names. A name equal to the
// preferred name (ignoring case) wins over earlier names; otherwise the
// first occurring name in record order wins.
func (m *Matcher) Match(segments []string, record model.SynonymRecord) model.RoleMatch {
	if len(record.Names) == 0 || len(segments) == 0 {
		return model.Unmatched()
	}

	lowered := make([]string, len(segments))
	for i, s := range segments {
		lowered[i] = strings.ToLower(s)
	}

	var first *occurrence
	for _, name := range record.Names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		occ, ok := m.find(segments, lowered, name)
		if !ok {
			continue
		}
		if record.PreferredName != "" && strings.EqualFold(name, record.PreferredName) {
			return model.RoleMatch{
				Matched:         true,
				Surface:         name,
				Span:            occ.span,
				SentenceIndex:   occ.sentence,
				IsPreferredName: true,
			}
		}
		if first == nil {
			first = &occ
		}
	}

	if first == nil {
		return model.Unmatched()
	}
	return model.RoleMatch{
		Matched:       true,
		Surface:       first.name,
		Span:          first.span,
		SentenceIndex: first.sentence,
	}
}

func (m *Matcher) find(segments, lowered []string, name string) (occurrence, bool) {
	needle := strings.ToLower(name)
	for i, hay := range lowered {
		pos := m.index(hay, needle)
		if pos < 0 {
			continue
		}
		span := name
		// lowering can change byte lengths outside ASCII
		if len(hay) == len(segments[i]) {
			span = segments[i][pos : pos+len(needle)]
		}
		return occurrence{name: name, span: span, sentence: i}, true
	}
	return occurrence{}, false
}

func (m *Matcher) index(hay, needle string) int {
	if m.Mode != ModeWord {
		return strings.Index(hay, needle)
	}
	offset := 0
	for {
		pos := strings.Index(hay[offset:], needle)
		if pos < 0 {
			return -1
		}
		start := offset + pos
		end := start + len(needle)
		if isBoundary(hay, start, end) {
			return start
		}
		_, size := utf8.DecodeRuneInString(hay[start:])
		offset = start + size
		if offset >= len(hay) {
			return -1
		}
	}
}

func isBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
