package survey

import (
	"strconv"
	"strings"
	"time"

	"compassnet/internal/diag"
	"compassnet/internal/format"
)

// missingValueThreshold mirrors the original implementation's sentinel
// window: any reading whose magnitude reaches this is "not recorded" rather
// than a real measurement, distinct from the -999 vertical-shot sentinel.
const missingValueThreshold = 990.0

// formFeed is the byte that separates surveys within one file.
const formFeed = 0x0C

// ctrlZ terminates the file outright (DOS EOF convention).
const ctrlZ = 0x1A

// Parse decodes a whole survey data file. Malformed shot rows are recorded
// in bag as survey.row diagnostics and skipped; an unusable header (an empty
// block, or a FORMAT: value that is not a valid descriptor) aborts only the
// survey it belongs to (survey.header, fatal for that survey) and parsing
// resumes at the next form-feed boundary.
func Parse(source string, data []byte, bag *diag.Bag) File {
	if i := indexByte(data, ctrlZ); i >= 0 {
		data = data[:i]
	}

	var file File
	for _, chunk := range splitSurveys(data) {
		if strings.TrimSpace(string(chunk)) == "" {
			continue
		}
		s, err := parseSurvey(source, chunk, bag)
		if err != nil {
			bag.Add(diag.KindSurveyHeader, diag.SeverityError, source, 0, "%v", err)
			continue
		}
		file.Surveys = append(file.Surveys, s)
	}
	return file
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func splitSurveys(data []byte) [][]byte {
	var chunks [][]byte
	start := 0
	for i, b := range data {
		if b == formFeed {
			chunks = append(chunks, data[start:i])
			start = i + 1
		}
	}
	chunks = append(chunks, data[start:])
	return chunks
}

var headerLabels = []string{
	"SURVEY NAME:",
	"SURVEY DATE:",
	"COMMENT:",
	"SURVEY TEAM:",
	"DECLINATION:",
	"FORMAT:",
	"CORRECTIONS2:",
	"CORRECTIONS:",
}

func parseSurvey(source string, chunk []byte, bag *diag.Bag) (Survey, error) {
	lines := strings.Split(string(chunk), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return Survey{}, diag.Fatal(diag.KindSurveyHeader, source, 0, "empty survey block")
	}

	h := Header{
		CaveName: strings.TrimSpace(lines[0]),
		Format:   format.Default,
	}
	rest := lines[1:]

	separatorIdx := -1
	awaitingTeamNames := false
	var teamNames []string
	for i, line := range rest {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			awaitingTeamNames = false
			continue
		}
		if isHeaderLine(trimmed) {
			if err := applyHeaderLine(&h, trimmed); err != nil {
				return Survey{}, diag.Fatal(diag.KindSurveyHeader, source, 0, "survey %q: %v", h.SurveyName, err)
			}
			awaitingTeamNames = strings.Contains(trimmed, "SURVEY TEAM:") && !hasTeamValue(trimmed)
			continue
		}
		if awaitingTeamNames {
			// SURVEY TEAM: names may run onto their own lines below the
			// label; keep consuming until a blank line or another header.
			teamNames = append(teamNames, trimmed)
			continue
		}
		// First non-header, non-blank line begins the column-name/shot
		// section; the separator line itself is discarded.
		separatorIdx = i
		break
	}
	if len(teamNames) > 0 {
		h.Team = strings.Join(teamNames, ", ")
	}

	var shotLines []string
	if separatorIdx >= 0 {
		shotLines = rest[separatorIdx+1:]
	}

	var shots []Shot
	idx := 0
	for lineNo, raw := range shotLines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		shot, err := parseShotRow(trimmed, h.Format, idx)
		if err != nil {
			bag.Add(diag.KindSurveyRow, diag.SeverityWarning, source, lineNo+1,
				"survey %q shot %d: %v", h.SurveyName, idx, err)
			continue
		}
		shots = append(shots, shot)
		idx++
	}

	return Survey{Header: h, Shots: shots}, nil
}

func isHeaderLine(line string) bool {
	for _, label := range headerLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}

// hasTeamValue reports whether a line naming SURVEY TEAM: also carries a
// non-empty value after the label on the same line.
func hasTeamValue(line string) bool {
	at := strings.Index(line, "SURVEY TEAM:")
	if at < 0 {
		return true
	}
	return strings.TrimSpace(line[at+len("SURVEY TEAM:"):]) != ""
}

// applyHeaderLine finds every recognised label on the line (a survey may
// pack DECLINATION/FORMAT/CORRECTIONS, or SURVEY DATE/COMMENT, onto one
// physical line) and applies each field in left-to-right order. It returns
// an error when a FORMAT: value is not a valid format descriptor.
func applyHeaderLine(h *Header, line string) error {
	type occurrence struct {
		pos   int
		label string
	}
	var found []occurrence
	for _, label := range headerLabels {
		if at := strings.Index(line, label); at >= 0 {
			found = append(found, occurrence{at, label})
		}
	}
	if len(found) == 0 {
		return nil
	}
	for i := 0; i < len(found); i++ {
		for j := i + 1; j < len(found); j++ {
			if found[j].pos < found[i].pos {
				found[i], found[j] = found[j], found[i]
			}
		}
	}

	for i, occ := range found {
		fieldStart := occ.pos + len(occ.label)
		fieldEnd := len(line)
		if i+1 < len(found) {
			fieldEnd = found[i+1].pos
		}
		value := strings.TrimSpace(line[fieldStart:fieldEnd])

		switch occ.label {
		case "SURVEY NAME:":
			h.SurveyName = value
		case "COMMENT:":
			h.Comment = value
		case "SURVEY TEAM:":
			h.Team = value
		case "SURVEY DATE:":
			if d, ok := parseDate(value); ok {
				h.Date = d
			}
		case "DECLINATION:":
			if v, err := strconv.ParseFloat(firstToken(value), 64); err == nil {
				h.Declination = v
			}
		case "FORMAT:":
			d, err := format.Parse(firstToken(value))
			if err != nil {
				return err
			}
			h.Format = d
		case "CORRECTIONS:":
			fields := tokenize(value)
			h.Corrections.Length = parseFloatAt(fields, 0)
			h.Corrections.FrontsightAzimuth = parseFloatAt(fields, 1)
			h.Corrections.FrontsightInclination = parseFloatAt(fields, 2)
		case "CORRECTIONS2:":
			fields := tokenize(value)
			h.Corrections.BacksightAzimuth = parseFloatAt(fields, 0)
			h.Corrections.BacksightInclination = parseFloatAt(fields, 1)
		}
	}
	return nil
}

func firstToken(s string) string {
	f := tokenize(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func parseFloatAt(fields []string, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0
	}
	return v
}

// parseDate decodes Compass's "M D YY" or "M D YYYY" survey date. A 2-digit
// year is offset by +1900, matching the original tool's convention.
func parseDate(value string) (time.Time, bool) {
	fields := tokenize(value)
	if len(fields) < 3 {
		return time.Time{}, false
	}
	month, err1 := strconv.Atoi(fields[0])
	day, err2 := strconv.Atoi(fields[1])
	year, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 1900
	}
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	if day < 1 || day > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// parseShotRow decodes one whitespace-separated shot row per the owning
// survey's format descriptor: from/to, then length/azimuth/inclination in
// the descriptor's declared shot order, then LRUD in its declared order,
// then an optional backsight pair, an optional #|flags# field, and a
// trailing free-text comment.
func parseShotRow(line string, f format.Descriptor, index int) (Shot, error) {
	fields := tokenize(line)
	if len(fields) < 2 {
		return Shot{}, errRowShort
	}

	shot := Shot{From: fields[0], To: fields[1], Index: index}
	pos := 2

	primary := make(map[format.ShotItem]float64, 3)
	for _, item := range f.ShotOrder {
		if pos >= len(fields) {
			return Shot{}, errRowShort
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return Shot{}, err
		}
		primary[item] = v
		pos++
	}

	lrud := make(map[format.LRUDItem]float64, 4)
	for _, item := range f.LRUDOrder {
		if pos >= len(fields) {
			return Shot{}, errRowShort
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return Shot{}, err
		}
		lrud[item] = v
		pos++
	}

	length := primary[format.ItemLength]
	azimuth := primary[format.ItemAzimuth]
	inclination := primary[format.ItemInclination]

	shot.Length = convertLengthReading(length, f.Length)
	if azimuth == verticalAzimuthSentinel {
		shot.Azimuth = verticalAzimuthSentinel
	} else {
		shot.Azimuth = format.BearingToDegrees(azimuth, f.Bearing)
	}
	if inclination == verticalAzimuthSentinel || f.Inclination == format.InclinationDepthGauge {
		shot.Inclination = inclination
	} else {
		shot.Inclination = format.InclinationToDegrees(inclination, f.Inclination)
	}

	shot.LRUD = LRUD{
		Left:  convertLRUDReading(lrud[format.ItemLeft], f.Passage),
		Up:    convertLRUDReading(lrud[format.ItemUp], f.Passage),
		Down:  convertLRUDReading(lrud[format.ItemDown], f.Passage),
		Right: convertLRUDReading(lrud[format.ItemRight], f.Passage),
	}

	if f.HasBacksights() {
		if pos+1 >= len(fields) {
			return Shot{}, errRowShort
		}
		bsAz, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return Shot{}, err
		}
		bsInc, err := strconv.ParseFloat(fields[pos+1], 64)
		if err != nil {
			return Shot{}, err
		}
		pos += 2
		shot.Backsight = Backsight{
			Azimuth:     format.BearingToDegrees(bsAz, f.Bearing),
			Inclination: format.InclinationToDegrees(bsInc, f.Inclination),
			Present:     bsAz != verticalAzimuthSentinel,
		}
	}

	if pos < len(fields) && strings.HasPrefix(fields[pos], "#") {
		flagField := fields[pos]
		pos++
		for pos < len(fields) && !strings.HasSuffix(flagField, "#") {
			flagField += " " + fields[pos]
			pos++
		}
		shot.Flags = parseFlags(flagField)
	}

	if pos < len(fields) {
		shot.Comment = strings.Join(fields[pos:], " ")
	}

	return shot, nil
}

// parseFlags decodes a "#|<chars>#" flag field into a set.
func parseFlags(field string) FlagSet {
	body := strings.Trim(field, "#")
	body = strings.TrimPrefix(body, "|")
	set := FlagSet{}
	for _, c := range body {
		f := Flag(c)
		switch f {
		case FlagExcludeLength, FlagExcludePlot, FlagExcludeAll, FlagNoAdjust:
			set[f] = true
		}
	}
	return set
}

func convertLengthReading(v float64, u format.LengthUnit) float64 {
	if isMissing(v) {
		return v
	}
	return format.LengthToFeet(v, u)
}

func convertLRUDReading(v float64, u format.LengthUnit) float64 {
	if v < 0 {
		return -1
	}
	return format.LengthToFeet(v, u)
}

func isMissing(v float64) bool {
	return v >= missingValueThreshold || v <= -missingValueThreshold
}

var errRowShort = errShortRow{}

type errShortRow struct{}

func (errShortRow) Error() string { return "shot row has too few fields for the declared format" }
