// Command tempcycle samples a temperature sensor on a fixed period, classifies
// its trend, drives an RGB indicator and reports telemetry over serial and MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sweeney/tempcycle/internal/config"
	"github.com/sweeney/tempcycle/internal/cycle"
	"github.com/sweeney/tempcycle/internal/gpio"
	"github.com/sweeney/tempcycle/internal/logic"
	"github.com/sweeney/tempcycle/internal/mqtt"
	"github.com/sweeney/tempcycle/internal/sensor"
	"github.com/sweeney/tempcycle/internal/status"
	"github.com/sweeney/tempcycle/internal/telemetry"
	"github.com/sweeney/tempcycle/internal/timer"
	"github.com/sweeney/tempcycle/internal/web"
)

// housekeeping is how often the loop refreshes connection status and checks
// whether a heartbeat is due.
const housekeeping = time.Second

var errTimerRegistration = errors.New("timer registration failed")

func main() {
	configPath := flag.String("config", "/etc/tempcycle.yaml", "Path to YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config, \"off\" disables)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config, \"off\" disables)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	printConfig := flag.Bool("print-config", false, "Print effective config and exit")
	printTemp := flag.Bool("print-temp", false, "Take one sample, print it and exit")

	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := newLogger(os.Stderr, level)
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *broker, *httpAddr)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	switch {
	case *printConfig:
		data, err := cfg.Marshal()
		if err != nil {
			log.Error("print config", "err", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	case *printTemp:
		if err := printTemperature(cfg); err != nil {
			log.Error("print temp", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, log, timer.Ticker{}); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.StampMilli,
	})
	return slog.New(h)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}

// applyOverrides applies non-empty flag values on top of the config file.
func applyOverrides(cfg *config.Config, broker, httpAddr string) {
	switch broker {
	case "":
	case "off":
		cfg.MQTT.Broker = ""
	default:
		cfg.MQTT.Broker = broker
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = httpAddr
	}
}

func openReader(cfg *config.Config) (sensor.Reader, error) {
	switch cfg.Sensor.Source {
	case config.SourceThermal:
		return sensor.NewThermalReader(cfg.Sensor.ThermalZone)
	case config.SourceSerial:
		return sensor.OpenSerialReader(cfg.Sensor.SerialPort, cfg.Sensor.Baud, cfg.SampleTimeout())
	case config.SourceSimulated:
		return sensor.NewSimulated(21.0, time.Now().UnixNano()), nil
	}
	return nil, fmt.Errorf("%w: unknown source %q", sensor.ErrInvalidChannel, cfg.Sensor.Source)
}

func printTemperature(cfg *config.Config) error {
	r, err := openReader(cfg)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}
	s := sensor.NewSampler(r, cfg.Cycle.SamplesPerMean, cfg.SampleTimeout())
	defer s.Close()

	v, err := s.Sample(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Temperature: %.2f C\n", v)
	return nil
}

// nopPublisher stands in when MQTT is disabled.
type nopPublisher struct{}

func (nopPublisher) Publish(cycle.Cycle) error { return nil }

func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }

func (nopPublisher) Close() error { return nil }

func run(cfg *config.Config, log *slog.Logger, timers timer.Service) error {
	reader, err := openReader(cfg)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}
	sampler := sensor.NewSampler(reader, cfg.Cycle.SamplesPerMean, cfg.SampleTimeout())
	defer sampler.Close()

	var publisher mqtt.Publisher = nopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, log)
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	sink, err := telemetry.OpenSink(cfg.Telemetry.SerialPort, cfg.Telemetry.Baud)
	if err != nil {
		return err
	}
	defer sink.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PeriodMs:       cfg.Cycle.Period.Milliseconds(),
		HeartbeatMs:    cfg.Cycle.Heartbeat.Milliseconds(),
		Threshold:      cfg.Cycle.Threshold,
		HistorySize:    cfg.Cycle.HistorySize,
		SamplesPerMean: cfg.Cycle.SamplesPerMean,
		Sensor:         cfg.Sensor.Source,
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	stages := cycle.Stages{
		Sampler:    sampler,
		Classifier: logic.NewClassifier(cfg.Cycle.Threshold, cfg.Cycle.HistorySize),
		Presenter:  tracker,
		Reporter:   telemetry.NewReporter(sink, publisher, log),
	}
	if cfg.Indicator.Enabled {
		ind, err := gpio.NewRealIndicator(cfg.Indicator.Chip, cfg.Indicator.Red, cfg.Indicator.Green, cfg.Indicator.Blue)
		if err != nil {
			return fmt.Errorf("init indicator: %w", err)
		}
		defer ind.Close()
		stages.Indicator = ind
	}

	publishStatus(publisher, tracker, "STARTUP", "", log)

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTP.Addr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	coord := cycle.NewCoordinator(time.Now)
	handle, err := timers.RegisterPeriodic(cfg.Cycle.Period, coord.OnTimerTick)
	if err != nil {
		return safetyIdle(publisher, tracker, sigCh, log, err)
	}
	defer handle.Stop()

	log.Info("started",
		"period", cfg.Cycle.Period,
		"sensor", cfg.Sensor.Source,
		"threshold", cfg.Cycle.Threshold,
		"history", cfg.Cycle.HistorySize,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.Cycle.Heartbeat)

	beat := time.NewTicker(housekeeping)
	defer beat.Stop()

	loop := cycle.NewLoop(coord, stages, log)
	return runLoop(coord, loop, handle, publisher, mqttStatus, tracker, cfg.Cycle.Heartbeat, time.Now, beat.C, sigCh, log)
}

// safetyIdle is entered when the periodic timer cannot be registered. No
// cycles run; the process waits for a signal and then exits with an error.
func safetyIdle(publisher mqtt.Publisher, tracker *status.Tracker, sig <-chan os.Signal, log *slog.Logger, cause error) error {
	log.Error("timer registration failed, entering safety idle", "err", cause)
	publishStatus(publisher, tracker, "FAULT", "TIMER_REGISTRATION", log)

	s := <-sig
	log.Info("received signal in safety idle", "signal", s)
	return fmt.Errorf("%w: %w", errTimerRegistration, cause)
}

func runLoop(coord *cycle.Coordinator, loop *cycle.Loop, ticks *timer.Handle, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, beat <-chan time.Time, sig <-chan os.Signal, log *slog.Logger) error {
	ctx := context.Background()
	hb := logic.NewHeartbeat(heartbeat, now())

	poll := func() {
		done, err := loop.Poll(ctx)
		if err != nil {
			log.Error("poll", "err", err)
		}
		for _, c := range done {
			log.Debug("cycle complete", "seq", c.Sequence, "temperature", c.Temperature, "trend", c.Trend.String())
		}
		tracker.SetCounts(coord.Stats())
	}

	for {
		select {
		case s := <-sig:
			log.Info("shutting down", "signal", s)
			coord.Halt()
			// no tick can arm a cycle once the timer goroutine has exited
			ticks.Stop()
			// finish a cycle armed before the halt
			poll()
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			publishStatus(publisher, tracker, "SHUTDOWN", signalName(s), log)
			return nil

		case <-coord.Wake():
			poll()

		case t := <-beat:
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			hbData := hb.Check(t, coord.Stats())
			if hbData == nil {
				continue
			}
			log.Info("heartbeat",
				"uptime", hbData.Uptime.Round(time.Second),
				"completed", hbData.Counts.Completed,
				"overruns", hbData.Counts.Overruns,
				"sample_failures", hbData.Counts.SampleFailures)

			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			tracker.SetCounts(hbData.Counts)
			publishStatus(publisher, tracker, "HEARTBEAT", "", log)
		}
	}
}

func publishStatus(publisher mqtt.Publisher, tracker *status.Tracker, event, reason string, log *slog.Logger) {
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   event != "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.Warn("failed to publish system event", "event", event, "err", err)
		return
	}
	log.Info("published system event", "event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
