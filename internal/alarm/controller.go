// Package alarm implements the smart-alarm controller: a scheduled state
// machine that arms a wake window ahead of a deadline, periodically
// classifies the current sleep phase from recent HR log samples, and
// triggers a wake either at a detected light-sleep opportunity or at the
// hard deadline.
//
// Single logical task: the wearable firmware runs this entirely on one
// FreeRTOS timer-service task. A timer.RealService fans its callbacks out
// onto its own dispatcher goroutine, so Controller guards its state with
// an internal mutex rather than pushing that requirement onto every
// caller — exported methods and the three timer callbacks all take the
// lock; unexported helpers assume it is already held.
package alarm

import (
	"fmt"
	"sync"
	"time"

	"github.com/infinitime/smartalarm/internal/bus"
	"github.com/infinitime/smartalarm/internal/clock"
	"github.com/infinitime/smartalarm/internal/history"
	"github.com/infinitime/smartalarm/internal/settings"
	"github.com/infinitime/smartalarm/internal/storage"
	"github.com/infinitime/smartalarm/internal/timer"
)

// Wake window and phase-check tuning.
const (
	WindowMinutes                    = 30
	PhaseCheckPeriod                 = 60 * time.Second
	RequiredLightChecks              = 2
	BackgroundHRIntervalDuringArm    = 60
	backgroundIntervalAbsentSentinel = 0xFFFF
)

// DefaultSettingsPath is where the alarm settings record is persisted.
const DefaultSettingsPath = "/.system/smartalarm.dat"

// Controller owns the one-shot alarm's state machine.
type Controller struct {
	mu sync.Mutex

	clock    clock.Source
	fs       storage.FS
	hr       HRSource
	settings settings.Store
	timers   timer.Service
	bus      bus.Publisher
	history  history.Recorder

	settingsPath string

	alarmSettings   Settings
	settingsChanged bool

	alerting bool
	inWindow bool

	currentPhase           SleepPhase
	previousPhase          SleepPhase
	consecutiveLightChecks uint8

	savedBackgroundInterval uint16

	windowTimer   timer.Handle
	deadlineTimer timer.Handle
	phaseTimer    timer.Handle
	timersCreated bool
}

// New creates a Controller. hist may be history.NoopRecorder{} if no audit
// trail is wanted.
func New(
	clk clock.Source,
	fs storage.FS,
	hr HRSource,
	st settings.Store,
	timers timer.Service,
	publisher bus.Publisher,
	hist history.Recorder,
	settingsPath string,
) *Controller {
	if settingsPath == "" {
		settingsPath = DefaultSettingsPath
	}
	return &Controller{
		clock:         clk,
		fs:            fs,
		hr:            hr,
		settings:      st,
		timers:        timers,
		bus:           publisher,
		history:       hist,
		settingsPath:  settingsPath,
		alarmSettings: defaultSettings(),
	}
}

// Init creates the three timers (lazily, matching xTimerCreate's
// create-once semantics), loads persisted settings, and — if the loaded
// settings say enabled — schedules the alarm.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.timersCreated {
		c.windowTimer = c.timers.NewOneShot("smartalarm-window", c.lockedOnWindowStart)
		c.deadlineTimer = c.timers.NewOneShot("smartalarm-deadline", c.lockedOnAlarmDeadline)
		c.phaseTimer = c.timers.NewPeriodic("smartalarm-phasecheck", PhaseCheckPeriod, c.lockedCheckSleepPhase)
		c.timersCreated = true
	}

	c.loadSettingsFromFile()
	if c.alarmSettings.Enabled {
		c.scheduleAlarm()
	}
}

// SetAlarmTime updates the in-RAM target time. Does not (re)schedule.
func (c *Controller) SetAlarmTime(hours, minutes uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarmSettings.Hours != hours || c.alarmSettings.Minutes != minutes {
		c.alarmSettings.Hours = hours
		c.alarmSettings.Minutes = minutes
		c.settingsChanged = true
	}
}

// SetEnabled updates the in-RAM enabled flag. Does not (re)schedule.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarmSettings.Enabled != enabled {
		c.alarmSettings.Enabled = enabled
		c.settingsChanged = true
	}
}

// ScheduleAlarm arms the alarm for the next occurrence of the configured
// time at or after now, forces enabled=true, and enables background HR.
// It first stops all three timers, so it fully supersedes any earlier
// scheduling.
func (c *Controller) ScheduleAlarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleAlarm()
}

func (c *Controller) scheduleAlarm() {
	c.stopTimers()
	c.inWindow = false
	c.currentPhase = PhaseUnknown
	c.previousPhase = PhaseUnknown
	c.consecutiveLightChecks = 0

	now := c.clock.Now()
	alarmTime := time.Date(
		now.Year(), now.Month(), now.Day(),
		int(c.alarmSettings.Hours), int(c.alarmSettings.Minutes), 0, 0,
		now.Location(),
	)
	if !alarmTime.After(now) {
		alarmTime = alarmTime.Add(24 * time.Hour)
	}

	secondsToAlarm := alarmTime.Sub(now)
	secondsToWindow := secondsToAlarm - WindowMinutes*time.Minute
	if secondsToWindow < 0 {
		secondsToWindow = 0
	}

	if secondsToAlarm > 0 {
		c.timers.Start(c.deadlineTimer, secondsToAlarm)
	}

	if secondsToWindow > 0 {
		c.timers.Start(c.windowTimer, secondsToWindow)
	} else {
		c.onWindowStart()
	}

	if !c.alarmSettings.Enabled {
		c.alarmSettings.Enabled = true
		c.settingsChanged = true
	}

	c.enableBackgroundHR()
}

// DisableAlarm stops all timers, restores background HR, resets
// window/phase state, and clears the enabled flag.
func (c *Controller) DisableAlarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimers()
	c.restoreBackgroundHR()
	c.inWindow = false
	c.currentPhase = PhaseUnknown
	c.previousPhase = PhaseUnknown
	c.consecutiveLightChecks = 0

	if c.alarmSettings.Enabled {
		c.alarmSettings.Enabled = false
		c.settingsChanged = true
	}
}

// StopAlerting clears alerting/inWindow/phase state and disables the
// alarm — one-shot semantics: once acknowledged, it does not rearm itself.
func (c *Controller) StopAlerting() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alerting = false
	c.inWindow = false
	c.currentPhase = PhaseUnknown
	c.previousPhase = PhaseUnknown
	c.consecutiveLightChecks = 0

	if c.alarmSettings.Enabled {
		c.alarmSettings.Enabled = false
		c.settingsChanged = true
	}
}

// SaveSettings persists alarm settings if they have changed since the
// last save.
func (c *Controller) SaveSettings() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.settingsChanged {
		return nil
	}
	if err := c.saveSettingsToFile(); err != nil {
		return err
	}
	c.settingsChanged = false
	return nil
}

// Hours returns the configured alarm hour.
func (c *Controller) Hours() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alarmSettings.Hours
}

// Minutes returns the configured alarm minute.
func (c *Controller) Minutes() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alarmSettings.Minutes
}

// IsEnabled reports whether the alarm is armed.
func (c *Controller) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alarmSettings.Enabled
}

// IsAlerting reports whether the wake is currently signalling.
func (c *Controller) IsAlerting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alerting
}

// IsInWindow reports whether the controller is inside the pre-deadline
// wake window.
func (c *Controller) IsInWindow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inWindow
}

// CurrentPhase returns the most recently classified sleep phase.
func (c *Controller) CurrentPhase() SleepPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPhase
}

func (c *Controller) lockedOnWindowStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWindowStart()
}

func (c *Controller) lockedOnAlarmDeadline() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAlarmDeadline()
}

func (c *Controller) lockedCheckSleepPhase() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkSleepPhase()
}

func (c *Controller) onWindowStart() {
	c.inWindow = true
	c.consecutiveLightChecks = 0
	c.previousPhase = PhaseUnknown
	c.currentPhase = PhaseUnknown

	c.timers.Start(c.phaseTimer, PhaseCheckPeriod)
}

func (c *Controller) onAlarmDeadline() {
	c.timers.Stop(c.phaseTimer)
	c.inWindow = false

	if !c.alerting {
		c.triggerWake(false)
	}
}

func (c *Controller) checkSleepPhase() {
	if c.alerting || !c.inWindow {
		return
	}

	c.previousPhase = c.currentPhase
	c.currentPhase = analyzeSleepPhase(c.hr)

	if c.currentPhase == PhaseLight {
		c.consecutiveLightChecks++

		transitionToLight := c.previousPhase == PhaseDeep || c.previousPhase == PhaseREM
		sustainedLight := c.consecutiveLightChecks >= RequiredLightChecks

		if transitionToLight || sustainedLight {
			c.timers.Stop(c.phaseTimer)
			c.timers.Stop(c.deadlineTimer)
			c.inWindow = false
			c.triggerWake(true)
		}
	} else {
		c.consecutiveLightChecks = 0
	}
}

func (c *Controller) triggerWake(early bool) {
	c.alerting = true
	c.restoreBackgroundHR()

	// Neither failure is raised to the caller: the alerting flag above is
	// the authoritative signal regardless of whether the companion bridge
	// or audit trail heard about it.
	now := c.clock.Now()
	_ = c.bus.PostSmartAlarmFired(now)
	if c.history != nil {
		_ = c.history.RecordWake(now, c.currentPhase.String(), early)
	}
}

func (c *Controller) stopTimers() {
	if !c.timersCreated {
		return
	}
	c.timers.Stop(c.windowTimer)
	c.timers.Stop(c.deadlineTimer)
	c.timers.Stop(c.phaseTimer)
}

func (c *Controller) enableBackgroundHR() {
	if c.savedBackgroundInterval == 0 {
		current, err := c.settings.GetHeartRateBackgroundInterval()
		if err != nil || current == nil {
			c.savedBackgroundInterval = backgroundIntervalAbsentSentinel
		} else {
			c.savedBackgroundInterval = *current
		}
	}
	v := uint16(BackgroundHRIntervalDuringArm)
	_ = c.settings.SetHeartRateBackgroundInterval(&v)
}

func (c *Controller) restoreBackgroundHR() {
	if c.savedBackgroundInterval == backgroundIntervalAbsentSentinel {
		_ = c.settings.SetHeartRateBackgroundInterval(nil)
	} else if c.savedBackgroundInterval != 0 {
		v := c.savedBackgroundInterval
		_ = c.settings.SetHeartRateBackgroundInterval(&v)
	}
	c.savedBackgroundInterval = 0
}

func (c *Controller) loadSettingsFromFile() {
	data, err := c.fs.ReadFileAt(c.settingsPath, 0, settingsSize)
	if err != nil {
		return // no prior settings; keep defaults
	}
	s, ok := decodeSettings(data)
	if !ok || s.Version != settingsVersion {
		return
	}
	c.alarmSettings = s
}

func (c *Controller) saveSettingsToFile() error {
	if err := c.fs.WriteFileAt(c.settingsPath, 0, encodeSettings(c.alarmSettings)); err != nil {
		return fmt.Errorf("alarm: save settings: %w", err)
	}
	return nil
}
