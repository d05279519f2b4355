package simulator

import (
	"fmt"
	"io"
	"time"

	"github.com/infinitime/smartalarm/internal/alarm"
	"github.com/infinitime/smartalarm/internal/bus"
	"github.com/infinitime/smartalarm/internal/clock"
	"github.com/infinitime/smartalarm/internal/history"
	"github.com/infinitime/smartalarm/internal/hrlog"
	"github.com/infinitime/smartalarm/internal/settings"
	"github.com/infinitime/smartalarm/internal/storage"
	"github.com/infinitime/smartalarm/internal/timer"
)

// Event is one notable transition observed while replaying a scenario.
type Event struct {
	At     time.Time
	Kind   string // "window-open", "phase", "fired"
	Detail string
}

// Result is the full transcript of a replayed scenario.
type Result struct {
	Events   []Event
	Fired    bool
	FiredAt  time.Time
	Early    bool
	Phase    alarm.SleepPhase
}

// Run replays scenario against a freshly built fake controller stack and
// returns every observed transition, in order. w, if non-nil, receives a
// live line per event as it happens (the CLI wires this to stdout; tests
// pass nil and just inspect the returned Result).
func Run(scenario Scenario, w io.Writer) (Result, error) {
	clk := clock.NewFake(scenario.Start)
	fs := storage.NewFakeFS()
	hr := hrlog.New(fs, clk, "/.system")
	hr.Init()
	st := settings.NewFakeStore()
	timers := timer.NewFakeService(clk)

	fake := bus.NewFakePublisher()
	hist := history.NewFakeRecorder()

	var result Result
	notify := func(at time.Time, kind, detail string) {
		result.Events = append(result.Events, Event{At: at, Kind: kind, Detail: detail})
		if w != nil {
			fmt.Fprintf(w, "[%s] %s: %s\n", at.Format("15:04:05"), kind, detail)
		}
	}

	ctrl := alarm.New(clk, fs, hr, st, timers, fake, hist, "/.system/smartalarm.dat")
	ctrl.SetAlarmTime(scenario.Alarm.Hours, scenario.Alarm.Minutes)
	ctrl.SetEnabled(true)
	ctrl.Init()

	if ctrl.IsInWindow() {
		notify(clk.Now(), "window-open", "wake window opened immediately on schedule")
	}

	lastPhase := ctrl.CurrentPhase()
	for _, sample := range scenario.Samples {
		target := scenario.Start.Add(sample.Offset)
		if d := target.Sub(clk.Now()); d > 0 {
			wasInWindow := ctrl.IsInWindow()
			timers.Advance(d)
			if !wasInWindow && ctrl.IsInWindow() {
				notify(clk.Now(), "window-open", "wake window opened")
			}
			if phase := ctrl.CurrentPhase(); phase != lastPhase {
				notify(clk.Now(), "phase", fmt.Sprintf("%s -> %s", lastPhase, phase))
				lastPhase = phase
			}
			if ctrl.IsAlerting() && !result.Fired {
				result.Fired = true
				result.FiredAt = clk.Now()
				if n := len(fake.Fired); n > 0 {
					result.FiredAt = fake.Fired[n-1]
				}
				result.Phase = ctrl.CurrentPhase()
				notify(result.FiredAt, "fired", fmt.Sprintf("alarm fired (phase=%s)", result.Phase))
			}
		}
		hr.AddMeasurement(sample.BPM)
	}

	// Run past the deadline so a backstop fire that hasn't happened yet
	// (e.g. a scenario with no samples near the window) still shows up.
	if !result.Fired {
		timers.Advance(25 * time.Hour)
		if phase := ctrl.CurrentPhase(); phase != lastPhase {
			notify(clk.Now(), "phase", fmt.Sprintf("%s -> %s", lastPhase, phase))
		}
		if ctrl.IsAlerting() {
			result.Fired = true
			result.FiredAt = clk.Now()
			if n := len(fake.Fired); n > 0 {
				result.FiredAt = fake.Fired[n-1]
			}
			result.Phase = ctrl.CurrentPhase()
			notify(result.FiredAt, "fired", fmt.Sprintf("alarm fired at deadline (phase=%s)", result.Phase))
		}
	}

	if result.Fired && len(fake.Fired) > 0 {
		result.Early = hist.Records[len(hist.Records)-1].Early
	}

	return result, nil
}
