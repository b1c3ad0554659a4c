// Package i18n renders clock statuses and match notifications in the
// configured language.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/okian/matchclock/internal/domain/clock"
)

// Key identifies a notification message.
type Key string

// Notification keys.
const (
	KeyMatchMinute   Key = "notify.match_minute"
	KeyMilestone     Key = "notify.milestone"
	KeyHalfTime      Key = "notify.half_time"
	KeyGoal          Key = "notify.goal"
	KeyCard          Key = "notify.card"
	KeyAlarm         Key = "notify.alarm"
	KeyTimerFinished Key = "notify.timer_finished"
	KeyModeChanged   Key = "notify.mode_changed"
	KeyMatchStarted  Key = "notify.match_started"
	KeyMatchFinal    Key = "notify.match_final"
	KeyPersistFailed Key = "notify.persist_failed"
	KeyReconciled    Key = "notify.reconciled"

	keyDefaultAlarm = "alarm.default_message"
)

// Default is used when no locale is configured.
const Default = "en"

var (
	english = language.English
	spanish = language.Spanish

	supported = []language.Tag{english, spanish}
	matcher   = language.NewMatcher(supported)
)

// entry holds one message in both languages.
type entry struct {
	key    string
	en, es string
}

// detailed statuses take their Detail as the single %s argument.
var detailed = map[clock.StatusCode]bool{
	clock.StatusWrongMode:         true,
	clock.StatusInvalidAlarm:      true,
	clock.StatusAlarmSet:          true,
	clock.StatusAlarm:             true,
	clock.StatusChronometerPaused: true,
	clock.StatusDurationSet:       true,
}

var entries = []entry{
	{string(clock.StatusReady), "Ready", "Listo"},
	{string(clock.StatusRunning), "Running", "En marcha"},
	{string(clock.StatusPaused), "Paused", "Pausado"},
	{string(clock.StatusFinished), "Time is up!", "¡Tiempo finalizado!"},
	{string(clock.StatusConfigureTimer), "Configure timer duration", "Configura la duración del temporizador"},
	{string(clock.StatusNotRunning), "Not running", "No está en marcha"},
	{string(clock.StatusDurationLocked), "Duration can only be changed at zero", "La duración solo se puede cambiar en cero"},
	{string(clock.StatusInvalidDuration), "Duration must be positive", "La duración debe ser positiva"},
	{string(clock.StatusWrongMode), "Not available in %s mode", "No disponible en modo %s"},
	{string(clock.StatusInvalidAlarm), "Invalid alarm time %s", "Hora de alarma no válida %s"},
	{string(clock.StatusAlarmSet), "Alarm set for %s", "Alarma configurada para %s"},
	{string(clock.StatusAlarm), "Alarm: %s", "Alarma: %s"},
	{string(clock.StatusChronometerPaused), "Chronometer paused at %s", "Cronómetro pausado en %s"},
	{string(clock.StatusDurationSet), "Duration set to %s", "Duración establecida en %s"},

	{string(KeyMatchMinute), "Minute %d of the match", "Minuto %d del partido"},
	{string(KeyMilestone), "%d minutes of play have elapsed", "Han transcurrido %d minutos de partido"},
	{string(KeyHalfTime), "Half time", "Medio tiempo"},
	{string(KeyGoal), "Goal for %s at minute %d (%s)", "Gol del equipo %s al minuto %d (%s)"},
	{string(KeyCard), "%s card at minute %d", "Tarjeta %s al minuto %d"},
	{string(KeyAlarm), "Alarm: %s", "Alarma: %s"},
	{string(KeyTimerFinished), "Countdown finished", "Temporizador finalizado"},
	{string(KeyModeChanged), "Mode changed to %s", "Modo cambiado a %s"},
	{string(KeyMatchStarted), "Match started: %s vs %s", "Partido iniciado: %s vs %s"},
	{string(KeyMatchFinal), "Final result: %d-%d", "Resultado final: %d-%d"},
	{string(KeyPersistFailed), "Could not record %s at minute %d", "No se pudo registrar %s al minuto %d"},
	{string(KeyReconciled), "Score synced with records: %s", "Marcador sincronizado con el registro: %s"},

	{keyDefaultAlarm, "Alarm activated!", "¡Alarma activada!"},
}

// words are translated vocabulary used inside messages.
var words = []entry{
	{"home", "home", "local"},
	{"away", "away", "visitante"},
	{"yellow", "Yellow", "Amarilla"},
	{"red", "Red", "Roja"},
	{"goal", "goal", "gol"},
	{"card", "card", "tarjeta"},
	{"wall_clock", "wall clock", "reloj"},
	{"chronometer", "chronometer", "cronómetro"},
	{"countdown_timer", "countdown timer", "temporizador"},
	{"football_match", "football match", "fútbol"},
	{"alarm_clock", "alarm clock", "alarma"},
}

var cat = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(english))
	for _, list := range [][]entry{entries, words} {
		for _, e := range list {
			// keys and messages are static; SetString only fails on a bad tag
			_ = b.SetString(english, e.key, e.en)
			_ = b.SetString(spanish, e.key, e.es)
		}
	}
	return b
}

// Translator formats messages for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// Supported returns the locales New accepts.
func Supported() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// New returns a Translator for locale, e.g. "en", "es" or "es-MX".
func New(locale string) (*Translator, error) {
	if strings.TrimSpace(locale) == "" {
		locale = Default
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}
	tag := supported[idx]
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}, nil
}

// Locale returns the base language in use.
func (t *Translator) Locale() string { return t.tag.String() }

// Status renders a status line.
func (t *Translator) Status(s clock.Status) string {
	if detailed[s.Code] {
		return t.printer.Sprintf(string(s.Code), t.word(s.Detail))
	}
	return t.printer.Sprintf(string(s.Code))
}

// Message renders a notification. args must match the message verbs.
func (t *Translator) Message(k Key, args ...any) string {
	return t.printer.Sprintf(string(k), args...)
}

// Word translates a vocabulary item such as a side, card kind or mode name.
// Unknown words are returned unchanged.
func (t *Translator) Word(w string) string { return t.word(w) }

func (t *Translator) word(w string) string {
	for _, e := range words {
		if e.key == w {
			return t.printer.Sprintf(w)
		}
	}
	return w
}

// DefaultAlarmMessage is the alarm text used when none is given.
func (t *Translator) DefaultAlarmMessage() string {
	return t.printer.Sprintf(keyDefaultAlarm)
}
