package project

import (
	"strconv"
	"strings"

	"compassnet/internal/datum"
	"compassnet/internal/diag"
)

type scanner struct {
	data   string
	pos    int
	line   int
	source string
}

// Parse decodes a whole project descriptor. Fatal errors (unterminated
// record, unbalanced folder nesting, malformed numeric field) abort parsing
// immediately and are returned as the error; recoverable conditions are
// unreachable at this layer per spec, so bag is presently unused but kept
// for parity with the other parsers and future non-fatal findings.
func Parse(source string, data []byte, bag *diag.Bag) (Project, error) {
	s := &scanner{data: string(data), line: 1, source: source}

	var proj Project
	var folderStack []string

	for {
		s.skipWhitespace()
		if s.eof() {
			break
		}
		startLine := s.line
		c := s.data[s.pos]
		s.pos++

		switch c {
		case '#':
			entry, err := s.parseFileEntry(startLine)
			if err != nil {
				return Project{}, err
			}
			entry.Folder = append([]string(nil), folderStack...)
			proj.Files = append(proj.Files, entry)
		case '[':
			name, err := s.parseFolderStart(startLine)
			if err != nil {
				return Project{}, err
			}
			folderStack = append(folderStack, name)
		case ']':
			if err := s.expectSemicolon(startLine); err != nil {
				return Project{}, err
			}
			if len(folderStack) == 0 {
				return Project{}, diag.Fatal(diag.KindProjectStructure, source, startLine, "unmatched ']'")
			}
			folderStack = folderStack[:len(folderStack)-1]
		case '@':
			base, err := s.parseBase(startLine)
			if err != nil {
				return Project{}, err
			}
			proj.Base = base
		case '&':
			d, err := s.parseDatum(startLine)
			if err != nil {
				return Project{}, err
			}
			proj.Datum = d
		case '%', '*':
			v, err := s.parseNumber(startLine)
			if err != nil {
				return Project{}, err
			}
			if err := s.expectSemicolon(startLine); err != nil {
				return Project{}, err
			}
			proj.ConvergenceOverride.Set = true
			proj.ConvergenceOverride.Enabled = c == '%'
			proj.ConvergenceOverride.Value = v
		case '$':
			z, err := s.parseInt(startLine)
			if err != nil {
				return Project{}, err
			}
			if err := s.expectSemicolon(startLine); err != nil {
				return Project{}, err
			}
			proj.ZoneOverride.Set = true
			proj.ZoneOverride.Zone = z
		case '!':
			f, err := s.parseFlags(startLine)
			if err != nil {
				return Project{}, err
			}
			proj.Flags = f
		case '/':
			s.skipComment()
		default:
			// Unknown prefix character outside a comment is ignored; consume
			// through the next ';' so the scanner can resynchronise.
			s.skipToSemicolon()
		}
	}

	if len(folderStack) > 0 {
		return Project{}, diag.Fatal(diag.KindProjectStructure, source, s.line, "unmatched '[' for folder %q", folderStack[len(folderStack)-1])
	}

	return proj, nil
}

func (s *scanner) eof() bool { return s.pos >= len(s.data) }

func (s *scanner) skipWhitespace() {
	for !s.eof() {
		switch s.data[s.pos] {
		case '\n':
			s.line++
			s.pos++
		case ' ', '\t', '\r':
			s.pos++
		default:
			return
		}
	}
}

// skipComment consumes a '/'-introduced comment: it runs to the next '/' or
// to end of line, whichever comes first.
func (s *scanner) skipComment() {
	for !s.eof() {
		c := s.data[s.pos]
		if c == '/' {
			s.pos++
			return
		}
		if c == '\n' {
			return
		}
		s.pos++
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for {
		s.skipWhitespace()
		if s.eof() || s.data[s.pos] != '/' {
			return
		}
		s.pos++
		s.skipComment()
	}
}

func (s *scanner) skipToSemicolon() {
	for !s.eof() && s.data[s.pos] != ';' {
		if s.data[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
	if !s.eof() {
		s.pos++
	}
}

func (s *scanner) expectSemicolon(startLine int) error {
	s.skipWhitespaceAndComments()
	if s.eof() || s.data[s.pos] != ';' {
		return diag.Fatal(diag.KindProjectParse, s.source, startLine, "unterminated record: missing ';'")
	}
	s.pos++
	return nil
}

// isFieldStop reports the characters that end an unquoted field: comma,
// semicolon, and '/' (comment start), matching the grammar's implicit field
// boundaries.
func isFieldStop(c byte) bool {
	return c == ',' || c == ';' || c == '/'
}

func (s *scanner) readField() string {
	start := s.pos
	for !s.eof() && !isFieldStop(s.data[s.pos]) && s.data[s.pos] != '\n' {
		s.pos++
	}
	return strings.TrimSpace(s.data[start:s.pos])
}

func (s *scanner) parseNumber(startLine int) (float64, error) {
	s.skipWhitespaceAndComments()
	start := s.pos
	if !s.eof() && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
		s.pos++
	}
	sawDigit := false
	for !s.eof() && isDigit(s.data[s.pos]) {
		s.pos++
		sawDigit = true
	}
	if !s.eof() && s.data[s.pos] == '.' {
		s.pos++
		for !s.eof() && isDigit(s.data[s.pos]) {
			s.pos++
			sawDigit = true
		}
	}
	if !sawDigit {
		return 0, diag.Fatal(diag.KindProjectParse, s.source, startLine, "malformed numeric field %q", s.data[start:s.pos])
	}
	v, err := strconv.ParseFloat(s.data[start:s.pos], 64)
	if err != nil {
		return 0, diag.Fatal(diag.KindProjectParse, s.source, startLine, "malformed numeric field %q", s.data[start:s.pos])
	}
	return v, nil
}

func (s *scanner) parseInt(startLine int) (int, error) {
	v, err := s.parseNumber(startLine)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *scanner) expectComma(startLine int) error {
	s.skipWhitespaceAndComments()
	if s.eof() || s.data[s.pos] != ',' {
		return diag.Fatal(diag.KindProjectParse, s.source, startLine, "expected ','")
	}
	s.pos++
	return nil
}

// parseFileEntry parses `#<path>[,<link-or-fixed>]*;`.
func (s *scanner) parseFileEntry(startLine int) (FileEntry, error) {
	path := s.readField()
	entry := FileEntry{Path: path}

	for {
		s.skipWhitespaceAndComments()
		if s.eof() {
			return FileEntry{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "unterminated file entry for %q", path)
		}
		c := s.data[s.pos]
		s.pos++
		if c == ';' {
			return entry, nil
		}
		if c != ',' {
			return FileEntry{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "unexpected character %q in file entry", c)
		}

		s.skipWhitespaceAndComments()
		name := s.readNameUntilBracketOrStop()
		s.skipWhitespaceAndComments()
		if !s.eof() && s.data[s.pos] == '[' {
			s.pos++
			fs, err := s.parseFixedBody(name, startLine)
			if err != nil {
				return FileEntry{}, err
			}
			entry.Fixed = append(entry.Fixed, fs)
			continue
		}
		entry.Links = append(entry.Links, name)
	}
}

func (s *scanner) readNameUntilBracketOrStop() string {
	start := s.pos
	for !s.eof() {
		c := s.data[s.pos]
		if c == ',' || c == ';' || c == '/' || c == '[' || c == '\n' {
			break
		}
		s.pos++
	}
	return strings.TrimSpace(s.data[start:s.pos])
}

// parseFixedBody parses `unit,east,north,vertical]` after the '[' has been
// consumed. Inside the brackets, separators are commas, spaces, or any
// non-numeric/non-unit character, so the unit letter and each number are
// each read as the next recognisable token rather than by strict comma
// splitting.
func (s *scanner) parseFixedBody(name string, startLine int) (FixedStation, error) {
	s.skipWhitespaceAndComments()
	if s.eof() {
		return FixedStation{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "unterminated fixed-station brackets for %q", name)
	}
	unitCh := s.data[s.pos]
	unit := FixedUnit(toUpper(unitCh))
	if unit != FixedFeet && unit != FixedMeters {
		return FixedStation{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "unknown fixed-station unit %q", unitCh)
	}
	s.pos++

	if err := s.skipSeparator(startLine); err != nil {
		return FixedStation{}, err
	}
	east, err := s.parseNumber(startLine)
	if err != nil {
		return FixedStation{}, err
	}
	if err := s.skipSeparator(startLine); err != nil {
		return FixedStation{}, err
	}
	north, err := s.parseNumber(startLine)
	if err != nil {
		return FixedStation{}, err
	}
	if err := s.skipSeparator(startLine); err != nil {
		return FixedStation{}, err
	}
	elev, err := s.parseNumber(startLine)
	if err != nil {
		return FixedStation{}, err
	}
	s.skipWhitespaceAndComments()
	if s.eof() || s.data[s.pos] != ']' {
		return FixedStation{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "missing ']' closing fixed station %q", name)
	}
	s.pos++

	return FixedStation{Name: name, Unit: unit, East: east, North: north, Elev: elev}, nil
}

// skipSeparator consumes exactly one separator between fixed-station
// fields: whitespace and comment runs, then a comma if present (its
// absence is tolerated the same way the source grammar's "any
// non-numeric/non-unit character" allowance implies).
func (s *scanner) skipSeparator(startLine int) error {
	s.skipWhitespaceAndComments()
	if !s.eof() && s.data[s.pos] == ',' {
		s.pos++
	}
	s.skipWhitespaceAndComments()
	return nil
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// parseBase parses `@<east>,<north>,<elev>,<zone>,<conv>;`.
func (s *scanner) parseBase(startLine int) (BaseLocation, error) {
	var b BaseLocation
	var err error
	if b.East, err = s.parseNumber(startLine); err != nil {
		return BaseLocation{}, err
	}
	if err = s.expectComma(startLine); err != nil {
		return BaseLocation{}, err
	}
	if b.North, err = s.parseNumber(startLine); err != nil {
		return BaseLocation{}, err
	}
	if err = s.expectComma(startLine); err != nil {
		return BaseLocation{}, err
	}
	if b.Elevation, err = s.parseNumber(startLine); err != nil {
		return BaseLocation{}, err
	}
	if err = s.expectComma(startLine); err != nil {
		return BaseLocation{}, err
	}
	zone, err := s.parseInt(startLine)
	if err != nil {
		return BaseLocation{}, err
	}
	b.Zone = zone
	if err = s.expectComma(startLine); err != nil {
		return BaseLocation{}, err
	}
	if b.Convergence, err = s.parseNumber(startLine); err != nil {
		return BaseLocation{}, err
	}
	if err = s.expectSemicolon(startLine); err != nil {
		return BaseLocation{}, err
	}
	b.Set = true
	return b, nil
}

// parseDatum parses `&<datum string>;`.
func (s *scanner) parseDatum(startLine int) (string, error) {
	s.skipWhitespaceAndComments()
	start := s.pos
	for !s.eof() && s.data[s.pos] != ';' && s.data[s.pos] != '/' {
		s.pos++
	}
	name := strings.TrimSpace(s.data[start:s.pos])
	if err := s.expectSemicolon(startLine); err != nil {
		return "", err
	}
	if !datum.IsRecognized(name) {
		return "", diag.Fatal(diag.KindProjectParse, s.source, startLine, "unrecognised datum %q", name)
	}
	return name, nil
}

// parseFolderStart parses `[<folder-name>;`.
func (s *scanner) parseFolderStart(startLine int) (string, error) {
	s.skipWhitespaceAndComments()
	start := s.pos
	for !s.eof() && s.data[s.pos] != ';' {
		if s.data[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
	name := strings.TrimSpace(s.data[start:s.pos])
	if s.eof() {
		return "", diag.Fatal(diag.KindProjectParse, s.source, startLine, "unterminated folder-open record")
	}
	s.pos++
	return name, nil
}

// parseFlags parses `!<flags>;`.
func (s *scanner) parseFlags(startLine int) (Flags, error) {
	var f Flags
	for {
		if s.eof() {
			return Flags{}, diag.Fatal(diag.KindProjectParse, s.source, startLine, "unterminated flags record")
		}
		c := s.data[s.pos]
		s.pos++
		if c == ';' {
			return f, nil
		}
		switch c {
		case 'G':
			f.GlobalOverride = true
		case 'g':
			f.GlobalOverride = false
		case 'I':
			f.DeclinationIgnore, f.DeclinationAsEntered, f.DeclinationComputed = true, false, false
		case 'E':
			f.DeclinationIgnore, f.DeclinationAsEntered, f.DeclinationComputed = false, true, false
		case 'A':
			f.DeclinationIgnore, f.DeclinationAsEntered, f.DeclinationComputed = false, false, true
		case 'V':
			f.ApplyConvergence = true
		case 'v':
			f.ApplyConvergence = false
		case 'O':
			f.OverrideLRUDAttach = true
		case 'o':
			f.OverrideLRUDAttach = false
		case 'T':
			f.AttachToStation = true
		case 't':
			f.AttachToStation = false
		case 'S':
			f.ApplyShotFlags = true
		case 's':
			f.ApplyShotFlags = false
		case 'X':
			f.ApplyExclusionX = true
		case 'x':
			f.ApplyExclusionX = false
		case 'P':
			f.ApplyExclusionP = true
		case 'p':
			f.ApplyExclusionP = false
		case 'L':
			f.ApplyExclusionL = true
		case 'l':
			f.ApplyExclusionL = false
		case 'C':
			f.ApplyExclusionC = true
		case 'c':
			f.ApplyExclusionC = false
		case '\n':
			s.line++
		}
	}
}
