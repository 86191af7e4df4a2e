package domain

import (
	"encoding/json"
	"strings"
)

// Method is the canonical machining method a Strategy targets.
type Method int

const (
	Milling Method = iota
	Drilling
	Boring
	// Turning is enumerated for completeness of the method-tag mapping but
	// has no physics evaluator; internal/optimize rejects it at validation.
	Turning
)

func (m Method) String() string {
	switch m {
	case Milling:
		return "MILLING"
	case Drilling:
		return "DRILLING"
	case Boring:
		return "BORING"
	case Turning:
		return "TURNING"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON writes the lowercase literal tag, so catalogs on disk carry
// "milling" rather than a bare ordinal.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(m.String()))
}

// UnmarshalJSON accepts a literal method tag or its localized equivalent
// and canonicalizes it via ParseMethod, so a hand-edited catalog can say
// "milling", "drilling", "boring", or "turning".
func (m *Method) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	*m = ParseMethod(tag)
	return nil
}

// ParseMethod canonicalizes a literal method tag (or its localized
// equivalent) to {MILLING, DRILLING, BORING, TURNING}. Unknown tags
// default to MILLING.
func ParseMethod(tag string) Method {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "MILLING", "FRAISAGE", "FRÄSEN":
		return Milling
	case "DRILLING", "PERCAGE", "BOHREN":
		return Drilling
	case "BORING", "ALESAGE", "AUSDREHEN":
		return Boring
	case "TURNING", "TOURNAGE", "DREHEN":
		return Turning
	default:
		return Milling
	}
}

// Severity grades a ReviewItem against a safety threshold.
type Severity int

const (
	Safe Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Score is the per-item contribution to ReviewReport.SafetyScore.
func (s Severity) Score() float64 {
	switch s {
	case Safe:
		return 100
	case Warning:
		return 70
	case Error:
		return 30
	case Critical:
		return 0
	default:
		return 0
	}
}
