package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchclock/internal/adapters/http/api"
	"github.com/okian/matchclock/internal/adapters/repository"
	service "github.com/okian/matchclock/internal/app"
	"github.com/okian/matchclock/internal/domain/clock"
	"github.com/okian/matchclock/internal/domain/match"
	"github.com/okian/matchclock/internal/domain/model"
)

// stubService records calls and returns canned results.
type stubService struct {
	view     service.ClockView
	accepted bool
	err      error

	mode      clock.Mode
	minutes   int
	alarmAt   clock.TimeOfDay
	alarmMsg  string
	format24h bool

	goal      service.GoalRequest
	goalRes   service.GoalResult
	card      service.CardRequest
	matchID   int64
	rosterFor int64
	limit     int
	notes     []service.Notification
}

func (s *stubService) command() (service.CommandResult, error) {
	return service.CommandResult{Accepted: s.accepted, Clock: s.view}, s.err
}

func (s *stubService) Snapshot(context.Context) (service.ClockView, error) { return s.view, s.err }

func (s *stubService) SetMode(_ context.Context, m clock.Mode) (service.CommandResult, error) {
	s.mode = m
	return s.command()
}

func (s *stubService) StartClock(context.Context) (service.CommandResult, error) { return s.command() }
func (s *stubService) PauseClock(context.Context) (service.CommandResult, error) { return s.command() }
func (s *stubService) ResetClock(context.Context) (service.CommandResult, error) { return s.command() }
func (s *stubService) ClearAlarm(context.Context) (service.CommandResult, error) { return s.command() }

func (s *stubService) SetDuration(_ context.Context, minutes int) (service.CommandResult, error) {
	s.minutes = minutes
	return s.command()
}

func (s *stubService) SetAlarm(_ context.Context, at clock.TimeOfDay, msg string) (service.CommandResult, error) {
	s.alarmAt, s.alarmMsg = at, msg
	return s.command()
}

func (s *stubService) SetFormat24h(_ context.Context, on bool) (service.CommandResult, error) {
	s.format24h = on
	return s.command()
}

func (s *stubService) StartMatch(_ context.Context, id int64) (service.ClockView, error) {
	s.matchID = id
	return s.view, s.err
}

func (s *stubService) ScoreGoal(_ context.Context, req service.GoalRequest) (service.GoalResult, error) {
	s.goal = req
	return s.goalRes, s.err
}

func (s *stubService) IssueCard(_ context.Context, req service.CardRequest) (service.CardResult, error) {
	s.card = req
	return service.CardResult{Event: match.CardEvent{Kind: req.Kind, ElapsedMinutes: 3}}, s.err
}

func (s *stubService) FinalizeMatch(context.Context) (model.Match, error) {
	return model.Match{ID: 1, HomeGoals: 2, AwayGoals: 1, Finalized: true}, s.err
}

func (s *stubService) Reconcile(context.Context) (clock.Score, error) {
	return clock.Score{Home: 1}, s.err
}

func (s *stubService) Roster(_ context.Context, id int64) ([]model.RosterEntry, error) {
	s.rosterFor = id
	return []model.RosterEntry{{ParticipantID: 7, Name: "Luis Torres", Team: "Sharks", Side: clock.Away}}, s.err
}

func (s *stubService) TopScorers(_ context.Context, n int) ([]model.ScorerEntry, error) {
	s.limit = n
	if s.err != nil {
		return nil, s.err
	}
	return []model.ScorerEntry{{Rank: 1, ParticipantID: 4, Name: "David Sánchez", Goals: 2}}, nil
}

func (s *stubService) Notifications(n int) []service.Notification {
	s.limit = n
	return s.notes
}

func (s *stubService) GetStats(context.Context) map[string]any {
	return map[string]any{"started": true}
}

func newTestServer(svc *stubService) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func do(ts *httptest.Server, method, path, body string, header ...string) (*http.Response, map[string]any) {
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, strings.NewReader(body))
	So(err, ShouldBeNil)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw any
		So(json.NewDecoder(resp.Body).Decode(&raw), ShouldBeNil)
		if m, ok := raw.(map[string]any); ok {
			out = m
		} else {
			out = map[string]any{"items": raw}
		}
	}
	return resp, out
}

func TestClockRoutes(t *testing.T) {
	Convey("Given the clock API", t, func() {
		svc := &stubService{
			accepted: true,
			view: service.ClockView{
				Snapshot: clock.Snapshot{Mode: clock.Chronometer, Display: "00:00:05", Running: true},
				Message:  "Chronometer running",
			},
		}
		ts := newTestServer(svc)
		defer ts.Close()

		Convey("GET /clock returns the view", func() {
			resp, body := do(ts, http.MethodGet, "/clock", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["mode"], ShouldEqual, "chronometer")
			So(body["display"], ShouldEqual, "00:00:05")
			So(body["message"], ShouldEqual, "Chronometer running")
		})

		Convey("POST /clock rejects the method", func() {
			resp, _ := do(ts, http.MethodPost, "/clock", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("POST /clock/mode parses mode names and aliases", func() {
			resp, body := do(ts, http.MethodPost, "/clock/mode", `{"mode":"timer"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["accepted"], ShouldBeTrue)
			So(svc.mode, ShouldEqual, clock.CountdownTimer)
		})

		Convey("POST /clock/mode requires a known mode", func() {
			resp, body := do(ts, http.MethodPost, "/clock/mode", `{"mode":"sundial"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "bad_request")

			resp, _ = do(ts, http.MethodPost, "/clock/mode", `{}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("a rejected command answers 409 with the clock", func() {
			svc.accepted = false
			resp, body := do(ts, http.MethodPost, "/clock/pause", "")
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			So(body["accepted"], ShouldBeFalse)
			So(body["clock"], ShouldNotBeNil)
		})

		Convey("start and reset are plain POSTs", func() {
			resp, _ := do(ts, http.MethodPost, "/clock/start", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			resp, _ = do(ts, http.MethodPost, "/clock/reset", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("POST /clock/duration needs minutes", func() {
			resp, _ := do(ts, http.MethodPost, "/clock/duration", `{"minutes":25}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.minutes, ShouldEqual, 25)

			resp, _ = do(ts, http.MethodPost, "/clock/duration", `{}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(ts, http.MethodPost, "/clock/duration", `{"minutes":153722867280912931}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp, _ = do(ts, http.MethodPost, "/clock/duration", `{"minutes":-5}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(svc.minutes, ShouldEqual, 25)
		})

		Convey("alarms are set and cleared", func() {
			resp, _ := do(ts, http.MethodPost, "/clock/alarm", `{"at":"07:30","message":"Kick off"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.alarmAt, ShouldResemble, clock.TimeOfDay{Hour: 7, Minute: 30})
			So(svc.alarmMsg, ShouldEqual, "Kick off")

			resp, _ = do(ts, http.MethodPost, "/clock/alarm", `{"at":"25:00"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(ts, http.MethodDelete, "/clock/alarm", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, _ = do(ts, http.MethodGet, "/clock/alarm", "")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("POST /clock/format toggles the display", func() {
			resp, _ := do(ts, http.MethodPost, "/clock/format", `{"format_24h":false}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.format24h, ShouldBeFalse)
		})

		Convey("a stopped service answers 503", func() {
			svc.err = service.ErrNotStarted
			resp, body := do(ts, http.MethodGet, "/clock", "")
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			So(body["code"], ShouldEqual, "unavailable")
		})
	})
}

func TestMatchRoutes(t *testing.T) {
	Convey("Given the match API", t, func() {
		svc := &stubService{
			view: service.ClockView{Snapshot: clock.Snapshot{Mode: clock.FootballMatch}},
			goalRes: service.GoalResult{
				Event: match.GoalEvent{Side: clock.Home, ElapsedMinutes: 12},
				Score: clock.Score{Home: 1},
				JobID: "job-1",
			},
		}
		ts := newTestServer(svc)
		defer ts.Close()

		Convey("POST /match/start starts the fixture", func() {
			resp, body := do(ts, http.MethodPost, "/match/start", `{"match_id":3}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.matchID, ShouldEqual, 3)
			So(body["mode"], ShouldEqual, "football_match")

			resp, _ = do(ts, http.MethodPost, "/match/start", `{}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("starting an unknown or finalized match is refused", func() {
			svc.err = fmt.Errorf("start match 9: %w", repository.ErrNotFound)
			resp, _ := do(ts, http.MethodPost, "/match/start", `{"match_id":9}`)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)

			svc.err = repository.ErrMatchFinalized
			resp, body := do(ts, http.MethodPost, "/match/start", `{"match_id":9}`)
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			So(body["code"], ShouldEqual, "match_finalized")
		})

		Convey("POST /match/goals accepts a goal with its idempotency key", func() {
			resp, body := do(ts, http.MethodPost, "/match/goals", `{"side":"home","participant_id":4}`,
				api.IdempotencyHeader, "req-1")
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			So(svc.goal.Side, ShouldEqual, clock.Home)
			So(svc.goal.ParticipantID, ShouldEqual, 4)
			So(svc.goal.RequestID, ShouldEqual, "req-1")
			So(body["job_id"], ShouldEqual, "job-1")
		})

		Convey("a replayed goal answers 200", func() {
			svc.goalRes.Duplicate = true
			resp, body := do(ts, http.MethodPost, "/match/goals", `{"side":"away","participant_id":7}`)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["duplicate"], ShouldBeTrue)
		})

		Convey("goal validation maps to client errors", func() {
			resp, _ := do(ts, http.MethodPost, "/match/goals", `{"side":"middle","participant_id":4}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = do(ts, http.MethodPost, "/match/goals", `{"side":"home"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			svc.err = service.ErrSideMismatch
			resp, _ = do(ts, http.MethodPost, "/match/goals", `{"side":"home","participant_id":7}`)
			So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)

			svc.err = service.ErrNoActiveMatch
			resp, _ = do(ts, http.MethodPost, "/match/goals", `{"side":"home","participant_id":7}`)
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)

			svc.err = service.ErrBackpressure
			resp, body := do(ts, http.MethodPost, "/match/goals", `{"side":"home","participant_id":7}`)
			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			So(body["code"], ShouldEqual, "backpressure")
		})

		Convey("POST /match/cards parses spanish card names", func() {
			resp, body := do(ts, http.MethodPost, "/match/cards", `{"kind":"roja","participant_id":9}`)
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			So(svc.card.Kind, ShouldEqual, match.Red)
			So(body["event"], ShouldNotBeNil)

			resp, _ = do(ts, http.MethodPost, "/match/cards", `{"kind":"green","participant_id":9}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("finalize and reconcile return results", func() {
			resp, body := do(ts, http.MethodPost, "/match/finalize", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["finalized"], ShouldBeTrue)
			So(body["home_goals"], ShouldEqual, 2.0)

			resp, body = do(ts, http.MethodPost, "/match/reconcile", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["score"], ShouldNotBeNil)
		})

		Convey("GET /match/roster defaults to the active match", func() {
			resp, body := do(ts, http.MethodGet, "/match/roster", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.rosterFor, ShouldEqual, 0)
			So(body["items"], ShouldHaveLength, 1)

			resp, _ = do(ts, http.MethodGet, "/match/roster?match_id=2", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.rosterFor, ShouldEqual, 2)

			resp, _ = do(ts, http.MethodGet, "/match/roster?match_id=x", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestQueryRoutes(t *testing.T) {
	Convey("Given the query API", t, func() {
		svc := &stubService{notes: []service.Notification{{Kind: "goal", Message: "Goal at minute 12"}}}
		ts := newTestServer(svc)
		defer ts.Close()

		Convey("GET /scorers uses the default limit", func() {
			resp, body := do(ts, http.MethodGet, "/scorers", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.limit, ShouldEqual, 10)
			So(body["items"], ShouldHaveLength, 1)
		})

		Convey("GET /scorers validates the limit", func() {
			resp, _ := do(ts, http.MethodGet, "/scorers?limit=0", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			svc.err = service.ErrInvalidLimit
			resp, _ = do(ts, http.MethodGet, "/scorers?limit=1000", "")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /notifications returns recent items", func() {
			resp, body := do(ts, http.MethodGet, "/notifications?limit=5", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(svc.limit, ShouldEqual, 5)
			So(body["items"], ShouldHaveLength, 1)
		})

		Convey("GET /stats and /healthz respond", func() {
			resp, body := do(ts, http.MethodGet, "/stats", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["started"], ShouldBeTrue)

			resp, _ = do(ts, http.MethodGet, "/healthz", "")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestErrorType(t *testing.T) {
	Convey("API errors keep kind and cause", t, func() {
		err := api.WrapKind("score goal", api.ErrBadRequest, match.ErrUnknownCard)
		So(err.Error(), ShouldEqual, "score goal: bad request: unknown card kind")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, match.ErrUnknownCard), ShouldBeTrue)
		So(api.Wrap("op", nil), ShouldBeNil)
		So(api.NewKind("op", api.ErrBackpressure).Error(), ShouldEqual, "op: backpressure")
	})
}
