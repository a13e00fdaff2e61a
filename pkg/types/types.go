package types

import (
	"strings"

	"github.com/fatih/color"
	"golang.org/x/xerrors"
)

// Severity is the impact level an advisory is published with. Values are ordered, higher is worse.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityModerate
	SeverityImportant
	SeverityCritical
)

var (
	// SeverityNames holds the canonical spelling used by updateinfo feeds, indexed by Severity.
	SeverityNames = []string{
		"Unknown",
		"Low",
		"Moderate",
		"Important",
		"Critical",
	}
	SeverityColor = []func(a ...interface{}) string{
		color.New(color.FgCyan).SprintFunc(),
		color.New(color.FgBlue).SprintFunc(),
		color.New(color.FgYellow).SprintFunc(),
		color.New(color.FgHiRed).SprintFunc(),
		color.New(color.FgRed).SprintFunc(),
	}
)

// NewSeverity parses a severity token. Matching ignores case but "Unknown" is not accepted:
// a feed that carries it has no usable severity.
func NewSeverity(severity string) (Severity, error) {
	s := strings.TrimSpace(severity)
	for i, name := range SeverityNames[1:] {
		if strings.EqualFold(s, name) {
			return Severity(i + 1), nil
		}
	}
	return SeverityUnknown, xerrors.Errorf("unknown severity: %q", severity)
}

func CompareSeverityString(sev1, sev2 string) int {
	s1, _ := NewSeverity(sev1)
	s2, _ := NewSeverity(sev2)
	return int(s2) - int(s1)
}

func ColorizeSeverity(s Severity) string {
	if !s.valid() {
		return color.New(color.FgBlue).SprintFunc()(s.String())
	}
	return SeverityColor[s](s.String())
}

func (s Severity) String() string {
	if !s.valid() {
		return SeverityNames[SeverityUnknown]
	}
	return SeverityNames[s]
}

func (s Severity) valid() bool {
	return s >= 0 && int(s) < len(SeverityNames)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), SeverityNames[SeverityUnknown]) {
		*s = SeverityUnknown
		return nil
	}
	sev, err := NewSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
