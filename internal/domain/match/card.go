package match

import (
	"fmt"
	"strings"
)

// CardKind is the disciplinary card colour.
type CardKind string

const (
	Yellow CardKind = "yellow"
	Red    CardKind = "red"
)

func (k CardKind) Valid() bool { return k == Yellow || k == Red }

// ParseCardKind accepts english and spanish names.
func ParseCardKind(s string) (CardKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yellow", "amarilla":
		return Yellow, nil
	case "red", "roja":
		return Red, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCard, s)
}
