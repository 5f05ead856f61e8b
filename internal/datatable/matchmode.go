package datatable

// MatchMode is the comparison semantics applied to one filter value.
// The wire protocol carries these as strings; they are resolved into
// the closed enum once, at parse time.
type MatchMode int

const (
	MatchContains MatchMode = iota
	MatchStartsWith
	MatchNotContains
	MatchEndsWith
	MatchEquals
	MatchNotEquals
	MatchIn
	MatchLt
	MatchLte
	MatchGt
	MatchGte
	MatchBetween
	MatchDateIs
	MatchDateIsNot
	MatchDateBefore
	MatchDateAfter
)

var matchModeNames = map[MatchMode]string{
	MatchContains:    "contains",
	MatchStartsWith:  "startsWith",
	MatchNotContains: "notContains",
	MatchEndsWith:    "endsWith",
	MatchEquals:      "equals",
	MatchNotEquals:   "notEquals",
	MatchIn:          "in",
	MatchLt:          "lt",
	MatchLte:         "lte",
	MatchGt:          "gt",
	MatchGte:         "gte",
	MatchBetween:     "between",
	MatchDateIs:      "dateIs",
	MatchDateIsNot:   "dateIsNot",
	MatchDateBefore:  "dateBefore",
	MatchDateAfter:   "dateAfter",
}

var matchModeByName = func() map[string]MatchMode {
	m := make(map[string]MatchMode, len(matchModeNames))
	for mode, name := range matchModeNames {
		m[name] = mode
	}
	return m
}()

func (m MatchMode) String() string {
	if name, ok := matchModeNames[m]; ok {
		return name
	}
	return "contains"
}

// ParseMatchMode maps a wire string to its mode. Unrecognized strings
// fall back to contains; the caller decides whether that is worth a log line.
func ParseMatchMode(s string) (MatchMode, bool) {
	if mode, ok := matchModeByName[s]; ok {
		return mode, true
	}
	return MatchContains, false
}
