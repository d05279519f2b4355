// Command smartalarmd runs the wrist-worn smart-alarm daemon: it logs
// incoming heart-rate samples, drives the alarm controller's state
// machine, mirrors wake events to a companion bridge over MQTT, and
// serves a diagnostics HTTP endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infinitime/smartalarm/internal/alarm"
	"github.com/infinitime/smartalarm/internal/bus"
	"github.com/infinitime/smartalarm/internal/clock"
	"github.com/infinitime/smartalarm/internal/config"
	"github.com/infinitime/smartalarm/internal/history"
	"github.com/infinitime/smartalarm/internal/hrlog"
	"github.com/infinitime/smartalarm/internal/motor"
	"github.com/infinitime/smartalarm/internal/sensor"
	"github.com/infinitime/smartalarm/internal/settings"
	"github.com/infinitime/smartalarm/internal/status"
	"github.com/infinitime/smartalarm/internal/storage"
	"github.com/infinitime/smartalarm/internal/timer"
	"github.com/infinitime/smartalarm/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to smartalarmd YAML config (empty uses built-in defaults)")
	storageDir := flag.String("storage-dir", "", "Override storage.dir")
	broker := flag.String("broker", "", "Override bus.broker (empty disables the MQTT bridge)")
	httpAddr := flag.String("http", "", "Override http_addr (empty disables the diagnostics server)")
	alarmHours := flag.Int("alarm-hours", -1, "Override alarm.hours (0-23)")
	alarmMinutes := flag.Int("alarm-minutes", -1, "Override alarm.minutes (0-59)")
	historyDB := flag.String("history-db", "", "Path to a SQLite wake-event audit log (empty disables it)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	sensorPin := flag.Int("sensor-pin", sensor.DefaultDataReadyPin, "BCM pin for the HR sensor's data-ready line")
	motorPin := flag.Int("motor-pin", motor.DefaultPin, "BCM pin driving the vibration motor")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyFlagOverrides(&cfg, *storageDir, *broker, *httpAddr, *alarmHours, *alarmMinutes)

	if err := config.Validate(&cfg); err != nil {
		log.Fatalf("fatal: invalid configuration: %v", err)
	}
	config.Normalize(&cfg)

	if err := run(cfg, *historyDB, *heartbeat, *sensorPin, *motorPin); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlagOverrides lets command-line flags win over the config file.
func applyFlagOverrides(cfg *config.Config, storageDir, broker, httpAddr string, alarmHours, alarmMinutes int) {
	if storageDir != "" {
		cfg.Storage.Dir = storageDir
	}
	if broker != "" {
		cfg.Bus.Broker = broker
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if alarmHours >= 0 {
		cfg.Alarm.Hours = uint8(alarmHours)
	}
	if alarmMinutes >= 0 {
		cfg.Alarm.Minutes = uint8(alarmMinutes)
	}
}

func run(cfg config.Config, historyDBPath string, heartbeat time.Duration, sensorPin, motorPin int) error {
	fs := storage.NewRealFS()
	clk := clock.NewReal()

	hr := hrlog.NewWithCapacity(fs, clk, cfg.Storage.Dir, uint16(cfg.Storage.CapacityOverride))
	hr.Init()

	settingsStore := settings.NewRealStore(cfg.Storage.Dir + "/settings.yaml")
	timers := timer.NewRealService()
	defer timers.Close()

	localBus := bus.NewLocalBus(1)
	publishers := bus.Multi{localBus}
	var mqttPub *bus.MQTTPublisher
	if cfg.Bus.Broker != "" {
		p, err := bus.NewMQTTPublisher(cfg.Bus.Broker, 16)
		if err != nil {
			log.Printf("companion bridge disabled: %v", err)
		} else {
			mqttPub = p
			publishers = append(publishers, p)
			defer p.Close()
		}
	}

	hist, histCloser := openHistory(historyDBPath)
	if histCloser != nil {
		defer histCloser()
	}

	ctrl := alarm.New(clk, fs, hr, settingsStore, timers, publishers, hist, cfg.Storage.Dir+"/smartalarm.dat")
	ctrl.SetAlarmTime(cfg.Alarm.Hours, cfg.Alarm.Minutes)
	ctrl.SetEnabled(cfg.Alarm.Enabled)
	ctrl.Init()
	if err := ctrl.SaveSettings(); err != nil {
		log.Printf("failed to persist initial settings: %v", err)
	}

	motorDriver, motorCloser := openMotor(motorPin)
	if motorCloser != nil {
		defer motorCloser()
	}

	sensorSrc, sensorCloser := openSensor(sensorPin)
	if sensorCloser != nil {
		defer sensorCloser()
	}

	tracker := status.NewTracker(clk.Now(), status.Config{
		StorageDir:   cfg.Storage.Dir,
		Broker:       cfg.Bus.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		AlarmHours:   cfg.Alarm.Hours,
		AlarmMinutes: cfg.Alarm.Minutes,
	})
	refreshTracker(tracker, ctrl, hr, mqttPub)
	log.Printf("started: storage=%s broker=%q http=%s alarm=%02d:%02d enabled=%v",
		cfg.Storage.Dir, cfg.Bus.Broker, cfg.HTTPAddr, cfg.Alarm.Hours, cfg.Alarm.Minutes, ctrl.IsEnabled())

	var srv *web.Server
	if cfg.HTTPAddr != "" {
		srv = web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("diagnostics server listening on %s", cfg.HTTPAddr)
	}

	hbTicker := time.NewTicker(heartbeatOrForever(heartbeat))
	defer hbTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var readings <-chan uint8
	if sensorSrc != nil {
		readings = sensorSrc.Readings()
	}

	return runLoop(ctrl, hr, motorDriver, tracker, mqttPub, readings, heartbeat, hbTicker.C, sigCh)
}

func runLoop(
	ctrl *alarm.Controller,
	hr *hrlog.Log,
	motorDriver motor.Driver,
	tracker *status.Tracker,
	mqttPub *bus.MQTTPublisher,
	readings <-chan uint8,
	heartbeat time.Duration,
	heartbeatTick <-chan time.Time,
	sig <-chan os.Signal,
) error {
	motorRunning := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				signalName = "SIGINT"
			case syscall.SIGTERM:
				signalName = "SIGTERM"
			}
			if motorRunning && motorDriver != nil {
				_ = motorDriver.Stop()
			}
			if err := ctrl.SaveSettings(); err != nil {
				log.Printf("failed to save settings on shutdown: %v", err)
			}
			refreshTracker(tracker, ctrl, hr, mqttPub)
			log.Printf("shutdown: reason=%s", signalName)
			return nil

		case bpm, ok := <-readings:
			if !ok {
				readings = nil
				continue
			}
			hr.AddMeasurement(bpm)

		case <-heartbeatTick:
			refreshTracker(tracker, ctrl, hr, mqttPub)
			snap := tracker.Snapshot()
			log.Printf("heartbeat: uptime=%v enabled=%v in_window=%v phase=%s samples=%d",
				snap.Uptime(), snap.Enabled, snap.InWindow, snap.Phase, snap.HRSampleCount)
		}

		if ctrl.IsAlerting() && !motorRunning {
			if motorDriver != nil {
				if err := motorDriver.Start(); err != nil {
					log.Printf("motor start error: %v", err)
				}
			}
			motorRunning = true
			refreshTracker(tracker, ctrl, hr, mqttPub)
		} else if !ctrl.IsAlerting() && motorRunning {
			if motorDriver != nil {
				if err := motorDriver.Stop(); err != nil {
					log.Printf("motor stop error: %v", err)
				}
			}
			motorRunning = false
			refreshTracker(tracker, ctrl, hr, mqttPub)
		}
	}
}

func refreshTracker(tracker *status.Tracker, ctrl *alarm.Controller, hr *hrlog.Log, mqttPub *bus.MQTTPublisher) {
	tracker.Update(ctrl.IsEnabled(), ctrl.IsAlerting(), ctrl.IsInWindow(), ctrl.CurrentPhase(), hr.EntryCount())
	if mqttPub != nil {
		tracker.SetBusConnected(mqttPub.IsConnected())
	}
}

func openHistory(path string) (history.Recorder, func()) {
	if path == "" {
		return history.NoopRecorder{}, nil
	}
	rec, err := history.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("wake-event history disabled: %v", err)
		return history.NoopRecorder{}, nil
	}
	return rec, func() { _ = rec.Close() }
}

func openMotor(pin int) (motor.Driver, func()) {
	d, err := motor.NewRealDriver(pin)
	if err != nil {
		log.Printf("vibration motor disabled: %v", err)
		return nil, nil
	}
	return d, func() { _ = d.Close() }
}

// unimplementedReadBPM stands in for the missing I2C/SPI PPG register
// read (see DESIGN.md): the data-ready GPIO edge is wired up but every
// read fails until a hardware-specific ReadBPM is plugged in.
func unimplementedReadBPM() (uint8, error) {
	return 0, errors.New("sensor: PPG register read not implemented for this build")
}

func openSensor(pin int) (sensor.Source, func()) {
	s, err := sensor.NewRealSource(pin, unimplementedReadBPM)
	if err != nil {
		log.Printf("heart-rate sensor disabled: %v", err)
		return nil, nil
	}
	return s, func() { _ = s.Close() }
}

func heartbeatOrForever(d time.Duration) time.Duration {
	if d <= 0 {
		return 365 * 24 * time.Hour
	}
	return d
}
