package datatable

import "testing"

func TestParseMatchModeKnownNames(t *testing.T) {
	cases := map[string]MatchMode{
		"startsWith":  MatchStartsWith,
		"contains":    MatchContains,
		"notContains": MatchNotContains,
		"endsWith":    MatchEndsWith,
		"equals":      MatchEquals,
		"notEquals":   MatchNotEquals,
		"in":          MatchIn,
		"lt":          MatchLt,
		"lte":         MatchLte,
		"gt":          MatchGt,
		"gte":         MatchGte,
		"between":     MatchBetween,
		"dateIs":      MatchDateIs,
		"dateIsNot":   MatchDateIsNot,
		"dateBefore":  MatchDateBefore,
		"dateAfter":   MatchDateAfter,
	}
	for name, want := range cases {
		got, ok := ParseMatchMode(name)
		if !ok {
			t.Errorf("ParseMatchMode(%q): not recognized", name)
			continue
		}
		if got != want {
			t.Errorf("ParseMatchMode(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseMatchModeUnknownFallsBackToContains(t *testing.T) {
	got, ok := ParseMatchMode("fuzzyish")
	if ok {
		t.Fatalf("expected unknown mode to be reported as not ok")
	}
	if got != MatchContains {
		t.Fatalf("unknown mode should fall back to contains, got %v", got)
	}
}

func TestMatchModeStringRoundTrip(t *testing.T) {
	for name := range matchModeByName {
		m, _ := ParseMatchMode(name)
		if m.String() != name {
			t.Errorf("mode %q: String() = %q", name, m.String())
		}
	}
}
