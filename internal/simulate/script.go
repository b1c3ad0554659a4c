package simulate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
)

// ScriptedGoal is a goal for Side recorded when the clock reaches Minute.
type ScriptedGoal struct {
	Side   clock.Side
	Minute int
}

// ScriptedCard is a card shown when the clock reaches Minute.
type ScriptedCard struct {
	Kind   match.CardKind
	Minute int
}

// Script describes a match to play offline.
type Script struct {
	Minutes int
	Goals   []ScriptedGoal
	Cards   []ScriptedCard
}

// ParseGoal reads "side@minute", e.g. "home@23".
func ParseGoal(s string) (ScriptedGoal, error) {
	name, minute, err := splitAt(s)
	if err != nil {
		return ScriptedGoal{}, err
	}
	side, err := clock.ParseSide(name)
	if err != nil {
		return ScriptedGoal{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return ScriptedGoal{Side: side, Minute: minute}, nil
}

// ParseCard reads "kind@minute", e.g. "yellow@12".
func ParseCard(s string) (ScriptedCard, error) {
	name, minute, err := splitAt(s)
	if err != nil {
		return ScriptedCard{}, err
	}
	kind, err := match.ParseCardKind(name)
	if err != nil {
		return ScriptedCard{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return ScriptedCard{Kind: kind, Minute: minute}, nil
}

func splitAt(s string) (string, int, error) {
	name, m, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q is not name@minute", ErrInvalidScript, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 {
		return "", 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidScript, s)
	}
	return name, minute, nil
}

// Validate checks the script fits in its own duration.
func (s Script) Validate() error {
	if s.Minutes < 1 {
		return fmt.Errorf("%w: duration must be at least one minute", ErrInvalidScript)
	}
	for _, g := range s.Goals {
		if g.Minute > s.Minutes {
			return fmt.Errorf("%w: goal at minute %d after full time %d", ErrInvalidScript, g.Minute, s.Minutes)
		}
	}
	for _, c := range s.Cards {
		if c.Minute > s.Minutes {
			return fmt.Errorf("%w: card at minute %d after full time %d", ErrInvalidScript, c.Minute, s.Minutes)
		}
	}
	return nil
}

// Expected is the score the script should produce.
func (s Script) Expected() clock.Score {
	var sc clock.Score
	for _, g := range s.Goals {
		if g.Side == clock.Home {
			sc.Home++
		} else {
			sc.Away++
		}
	}
	return sc
}

// byMinute groups goals and cards by the minute they fire on, keeping script order.
func (s Script) byMinute() (map[int][]ScriptedGoal, map[int][]ScriptedCard) {
	goals := make(map[int][]ScriptedGoal)
	cards := make(map[int][]ScriptedCard)
	sorted := append([]ScriptedGoal(nil), s.Goals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Minute < sorted[j].Minute })
	for _, g := range sorted {
		goals[g.Minute] = append(goals[g.Minute], g)
	}
	for _, c := range s.Cards {
		cards[c.Minute] = append(cards[c.Minute], c)
	}
	return goals, cards
}
