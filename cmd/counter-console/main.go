//go:build !tinygo

// Command counter-console polls the console buttons and battery, drives
// the panel, and optionally serves a status page and journals presses to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sweeney/counter-console/internal/adc"
	"github.com/sweeney/counter-console/internal/config"
	"github.com/sweeney/counter-console/internal/display"
	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/gpio"
	"github.com/sweeney/counter-console/internal/logic"
	"github.com/sweeney/counter-console/internal/mqtt"
	"github.com/sweeney/counter-console/internal/render"
	"github.com/sweeney/counter-console/internal/sim"
	"github.com/sweeney/counter-console/internal/status"
	"github.com/sweeney/counter-console/internal/web"
)

type flags struct {
	configPath string
	verbose    bool
	input      string
	poll       time.Duration
	debounce   time.Duration
	heartbeat  time.Duration
	httpAddr   string
	broker     string
	printState bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "counter-console",
		Short: "Seven-button counter console with an SSD1306 panel",
		Long: `counter-console polls seven buttons and PAGE, debounces them, and
drives a 128x64 SSD1306 panel showing the Joules, CMD, Infect, Speed and
Battery pages. Presses can be journalled to MQTT and the console state
is served over HTTP.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := newLogger(f.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return run(cfg, f.printState, logger)
		},
	}

	bindFlags(cmd, &f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	fs.StringVar(&f.input, "input", config.InputGPIO, "Button source: gpio, evdev or sim")
	fs.DurationVar(&f.poll, "poll", logic.TickInterval, "Button polling interval")
	fs.DurationVar(&f.debounce, "debounce", logic.DebounceInterval, "Debounce interval")
	fs.DurationVar(&f.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.StringVar(&f.httpAddr, "http", "", "HTTP status address (empty to disable)")
	fs.StringVar(&f.broker, "broker", "", "MQTT broker address (empty to disable)")
	fs.BoolVar(&f.printState, "print-state", false, "Print button levels and battery voltage, then exit")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flags set on the command line.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = f.input
	}
	if changed("poll") {
		cfg.Timing.Poll = f.poll
	}
	if changed("debounce") {
		cfg.Timing.Debounce = f.debounce
	}
	if changed("heartbeat") {
		cfg.Timing.Heartbeat = f.heartbeat
	}
	if changed("http") {
		cfg.HTTP.Addr = f.httpAddr
	}
	if changed("broker") {
		cfg.MQTT.Broker = f.broker
	}
	return cfg, cfg.Validate()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// hardware is the set of devices the loop runs against.
type hardware struct {
	buttons gpio.Reader
	battery logic.AnalogInput
	sink    display.Sink
	window  *sim.Window
	closers []io.Closer
}

func (h *hardware) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openHardware(cfg config.Config, faces *glyph.Faces) (*hardware, error) {
	h := &hardware{}

	if cfg.Input == config.InputSim {
		win, err := sim.NewWindow(cfg.Display.Width, cfg.Display.Height, faces, cfg.ADC.FixedVoltage)
		if err != nil {
			return nil, err
		}
		h.window = win
		h.buttons = win.Buttons()
		h.battery = win.Battery()
		h.sink = win
		h.closers = append(h.closers, win)
		return h, nil
	}

	var err error
	switch cfg.Input {
	case config.InputEvdev:
		var r *gpio.EvdevReader
		if r, err = gpio.NewEvdevReader(cfg.Evdev.Device); err == nil {
			h.buttons = r
		}
	default:
		var r *gpio.RealReader
		if r, err = gpio.NewRealReader(cfg.Pins.Chip, gpio.Pins(cfg.Pins.Offsets())); err == nil {
			h.buttons = r
		}
	}
	if err != nil {
		return nil, fmt.Errorf("init buttons: %w", err)
	}
	h.closers = append(h.closers, h.buttons)

	if cfg.ADC.Enabled {
		r, err := adc.NewADS1115Reader(cfg.ADC.Bus, cfg.ADC.Address, cfg.ADC.Channel)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("init adc: %w", err)
		}
		h.battery = r
		h.closers = append(h.closers, r)
	} else {
		h.battery = adc.NewFixed(cfg.ADC.FixedVoltage)
	}

	if cfg.Display.Enabled {
		s, err := display.NewSSD1306Sink(cfg.Display.Bus, cfg.Display.Width, cfg.Display.Height, faces)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("init display: %w", err)
		}
		h.sink = s
		h.closers = append(h.closers, s)
	} else {
		h.sink = display.Headless{W: cfg.Display.Width, H: cfg.Display.Height}
	}
	return h, nil
}

func run(cfg config.Config, printState bool, logger *zap.Logger) error {
	faces := glyph.Default()

	hw, err := openHardware(cfg, faces)
	if err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.Warn("close hardware", zap.Error(err))
		}
	}()

	if printState {
		return printLevels(os.Stdout, hw.buttons, hw.battery)
	}

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Discard{}
	if cfg.MQTT.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.MQTT.Broker, mqtt.NewTopics(cfg.MQTT.TopicPrefix), logger)
	}
	defer publisher.Close()

	// Tracker exists before STARTUP so the event carries a full snapshot.
	tracker := status.NewTracker(time.Now(), status.Config{
		Input:       cfg.Input,
		PollMs:      cfg.Timing.Poll.Milliseconds(),
		DebounceMs:  cfg.Timing.Debounce.Milliseconds(),
		FlashMs:     cfg.Timing.Flash.Milliseconds(),
		HeartbeatMs: cfg.Timing.Heartbeat.Milliseconds(),
		LowVoltage:  cfg.Timing.LowVoltage,
		Broker:      cfg.MQTT.Broker,
		HTTPPort:    cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	console := logic.NewConsole(cfg.Logic(), time.Now())
	tracker.Update(console.View(), console.Presses())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		logger.Warn("publish startup event", zap.Error(err))
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, faces)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", zap.String("addr", cfg.HTTP.Addr))
	}

	logger.Info("started",
		zap.String("input", cfg.Input),
		zap.Duration("poll", cfg.Timing.Poll),
		zap.Duration("debounce", cfg.Timing.Debounce),
		zap.Duration("heartbeat", cfg.Timing.Heartbeat),
		zap.String("broker", cfg.MQTT.Broker))

	ticker := time.NewTicker(cfg.Timing.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	l := &loop{
		console:    console,
		buttons:    hw.buttons,
		battery:    hw.battery,
		sink:       hw.sink,
		composer:   render.NewComposer(faces, hw.sink.Width(), hw.sink.Height()),
		faces:      faces,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		cfg:        cfg,
		logger:     logger,
	}

	if hw.window == nil {
		return l.run(time.Now, ticker.C, sigCh)
	}

	// The simulator window owns the main goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.run(time.Now, ticker.C, sigCh)
		hw.window.Close()
	}()
	winErr := hw.window.Run()
	select {
	case sigCh <- syscall.SIGINT:
	default:
	}
	return errors.Join(<-errCh, winErr)
}

// loop is the poll, dispatch and render cycle.
type loop struct {
	console    *logic.Console
	buttons    gpio.Reader
	battery    logic.AnalogInput
	sink       display.Sink
	composer   *render.Composer
	faces      *glyph.Faces
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	cfg        config.Config
	logger     *zap.Logger
}

func (l *loop) run(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	console := l.console
	if console == nil {
		console = logic.NewConsole(l.cfg.Logic(), now())
	}

	// Until the first good reading, assume the configured nominal voltage
	// rather than an empty battery.
	voltage := l.cfg.ADC.FixedVoltage
	if v, err := logic.ReadVoltage(l.battery); err != nil {
		l.logger.Warn("adc read error", zap.Error(err), zap.Float64("assumed_voltage", voltage))
	} else {
		voltage = v
	}

	for {
		select {
		case s := <-sig:
			l.logger.Info("shutting down", zap.Stringer("signal", s))
			reason := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				reason = "SIGINT"
			case syscall.SIGTERM:
				reason = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			l.refresh(console)
			event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
			if err := l.publisher.PublishSystem(event); err != nil {
				l.logger.Warn("publish shutdown event", zap.Error(err))
			}
			return nil

		case <-tick:
			t := now()
			levels, err := l.buttons.Read()
			if err != nil {
				l.logger.Warn("gpio read error", zap.Error(err))
				levels = gpio.AllReleased()
			}
			if v, err := logic.ReadVoltage(l.battery); err != nil {
				l.logger.Warn("adc read error", zap.Error(err))
			} else {
				voltage = v
			}

			actions := console.Step(levels, voltage, t)
			if len(actions) > 0 {
				view := console.View()
				for _, a := range actions {
					l.logger.Debug("press",
						zap.Stringer("button", a.Button),
						zap.String("mode", string(view.Mode)),
						zap.String("effect", mqtt.Effect(a)))
					if err := l.publisher.Publish(mqtt.PressEvent{Timestamp: t, Action: a, View: view}); err != nil {
						l.logger.Warn("publish press", zap.Error(err))
					}
				}
			}

			if hb := console.CheckHeartbeat(t, l.cfg.Timing.Heartbeat); hb != nil {
				l.logger.Info("heartbeat",
					zap.Duration("uptime", hb.Uptime),
					zap.Int("presses", hb.Presses.Total()))
				if net := readNetworkInfo(); net != nil {
					l.tracker.SetNetwork(net)
				}
				l.refresh(console)
				event := mqtt.SystemEvent{
					Timestamp:  hb.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", ""),
				}
				if err := l.publisher.PublishSystem(event); err != nil {
					l.logger.Warn("publish heartbeat", zap.Error(err))
				}
			}

			if f, ok := l.composer.Render(console); ok {
				if err := l.sink.Present(f); err != nil {
					l.logger.Warn("display present error", zap.Error(err))
				}
				l.tracker.SetFrame(f, l.raster(f))
			}
			l.refresh(console)
		}
	}
}

// raster returns the image of f for the status page. Sinks that rasterize
// hand back their own image; otherwise f is rasterized only when the
// status server is enabled.
func (l *loop) raster(f render.Frame) *image.Gray {
	if rs, ok := l.sink.(display.RasterSink); ok {
		if img := rs.Raster(); img != nil {
			return img
		}
	}
	if l.cfg.HTTP.Addr == "" {
		return nil
	}
	return display.Rasterize(f, l.faces)
}

// refresh copies console state into the tracker.
func (l *loop) refresh(console *logic.Console) {
	l.tracker.Update(console.View(), console.Presses())
	l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
}

// printLevels writes one line with every button level and the battery voltage.
func printLevels(w io.Writer, buttons gpio.Reader, battery logic.AnalogInput) error {
	levels, err := buttons.Read()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}
	v, err := logic.ReadVoltage(battery)
	if err != nil {
		return fmt.Errorf("read battery: %w", err)
	}

	parts := make([]string, 0, len(logic.Buttons)+1)
	for _, b := range logic.Buttons {
		parts = append(parts, fmt.Sprintf("%s: %s", b, levelString(levels[b])))
	}
	parts = append(parts, "Battery: "+logic.FormatVoltage(v))
	_, err = fmt.Fprintln(w, strings.Join(parts, ", "))
	return err
}

// levelString names a raw active-low level.
func levelString(high bool) string {
	if high {
		return "RELEASED"
	}
	return "PRESSED"
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
