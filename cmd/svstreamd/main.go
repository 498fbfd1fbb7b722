// Command svstreamd is a daemon that holds a control session open
// against a SICK SafeVisionary2 device, starts acquisition, and decodes
// its blob data stream, exposing decode-pipeline metrics over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/trace"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sick-safevisionary/govisionary/internal/blob"
	"github.com/sick-safevisionary/govisionary/internal/config"
	"github.com/sick-safevisionary/govisionary/internal/metrics"
	"github.com/sick-safevisionary/govisionary/internal/netconn"
	"github.com/sick-safevisionary/govisionary/internal/visionary"
	appversion "github.com/sick-safevisionary/govisionary/internal/version"
)

// shutdownTimeout is the maximum time to wait for the metrics server to
// drain active connections during graceful shutdown.
const shutdownTimeout = 10 * time.Second

// flightRecorderMinAge is the minimum window age for the flight recorder.
const flightRecorderMinAge = 500 * time.Millisecond

// flightRecorderMaxBytes is the upper bound on flight recorder window size.
const flightRecorderMaxBytes = 2 * 1024 * 1024 // 2 MiB

// errLoginFailed indicates the device rejected the configured credentials.
var errLoginFailed = errors.New("device rejected login credentials")

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("svstreamd starting",
		slog.String("version", appversion.Version),
		slog.String("control_addr", net.JoinHostPort(cfg.Control.Host, fmt.Sprintf("%d", cfg.Control.Port))),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	fr := startFlightRecorder(logger)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	if err := runServers(cfg, collector, reg, logger, *configPath, logLevel, fr); err != nil {
		logger.Error("svstreamd exited with error",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logger.Info("svstreamd stopped")
	return 0
}

// runServers opens the control session, starts acquisition, and runs the
// blob decode loop and metrics HTTP server using an errgroup with
// signal-aware context for graceful shutdown.
func runServers(
	cfg *config.Config,
	collector *metrics.Collector,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
	fr *trace.FlightRecorder,
) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	dialCtx, cancelDial := context.WithTimeout(ctx, time.Duration(cfg.Transport.TimeoutSecs)*time.Second)
	device, err := openDevice(dialCtx, cfg, collector, logger)
	cancelDial()
	if err != nil {
		return fmt.Errorf("open control session: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := device.Close(closeCtx); err != nil {
			logger.Warn("failed to close control session", slog.String("error", err.Error()))
		}
	}()

	fragments, err := netconn.ListenPacket(ctx, net.JoinHostPort("", fmt.Sprintf("%d", cfg.UDP.Port)))
	if err != nil {
		return fmt.Errorf("listen for blob fragments on UDP port %d: %w", cfg.UDP.Port, err)
	}
	// The shutdown goroutine below closes fragments to unblock the decode
	// loop; this defer is a backstop for paths that return before that
	// goroutine runs (e.g. the metrics server failing to bind).
	defer func() { _ = fragments.Close() }()

	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runDecodeLoop(gCtx, fragments, collector, logger)
	})

	startHTTPServers(gCtx, g, cfg, metricsSrv, logger)
	startDaemonGoroutines(gCtx, g, configPath, logLevel, logger)

	notifyReady(logger)

	g.Go(func() error {
		<-gCtx.Done()
		// Closing the fragment socket unblocks runDecodeLoop's pending
		// ReadFrom: a cancelled context with no deadline does not
		// interrupt a blocking syscall read on its own.
		if err := fragments.Close(); err != nil {
			logger.Warn("failed to close UDP fragment listener", slog.String("error", err.Error()))
		}
		return gracefulShutdown(ctx, device, logger, fr, metricsSrv)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// openDevice dials the control channel, opens a session, authenticates if
// credentials are configured, and tells the device a streaming client
// exists before starting continuous acquisition.
func openDevice(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (*visionary.Device, error) {
	addr := net.JoinHostPort(cfg.Control.Host, fmt.Sprintf("%d", cfg.Control.Port))

	transport, err := netconn.DialStream(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	device := visionary.NewDevice(transport, protocolForPort(cfg.Control.Port), cfg.Session.ClientID, cfg.Auth.Secure)
	device.SetMetrics(collector)
	if err := device.Open(ctx, uint8(cfg.Session.TimeoutSecs)); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	if cfg.Auth.Password != "" {
		level := visionary.UserLevel(config.AuthLevel(cfg.Auth.Level))
		if !device.Login(ctx, level, cfg.Auth.Password) {
			_ = device.Close(ctx)
			return nil, errLoginFailed
		}
		logger.Info("authenticated", slog.String("level", cfg.Auth.Level))
	}

	if !device.GetDataStreamConfig(ctx) {
		logger.Warn("device did not acknowledge streaming client configuration")
	}
	if !device.StartAcquisition(ctx) {
		logger.Warn("device did not acknowledge start-acquisition request")
	}

	return device, nil
}

// protocolForPort infers the framing variant from the configured control
// port: 2122 selects the session-oriented CoLa-2 framer, everything else
// falls back to the stream-framed CoLa-B framer.
func protocolForPort(port int) visionary.ProtocolType {
	if visionary.ProtocolType(port) == visionary.ProtocolCola2 {
		return visionary.ProtocolCola2
	}
	return visionary.ProtocolColaB
}

// runDecodeLoop reassembles and decodes blobs from the UDP fragment
// stream until ctx is cancelled, recording outcomes to collector.
func runDecodeLoop(ctx context.Context, fragments *netconn.PacketTransport, collector *metrics.Collector, logger *slog.Logger) error {
	reassembler := blob.NewUDPReassembler(fragments)
	decoder := blob.NewDecoder()

	for {
		buf, err := reassembler.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, visionary.ErrReceiveTimeout) {
				continue
			}
			collector.RecordReassemblyDrop(reassemblyDropReason(err))
			logger.Warn("blob reassembly error", slog.String("error", err.Error()))
			continue
		}

		frame, err := decoder.Decode(buf)
		if err != nil {
			collector.RecordSegmentError("envelope", "decode-error")
			logger.Warn("blob decode error", slog.String("error", err.Error()))
			continue
		}

		collector.RecordFrameDecoded()
		if frame.LastError != "" {
			collector.RecordSegmentError("frame", string(frame.LastError))
		}
	}
}

// reassemblyDropReason maps a UDPReassembler.Next error to the metrics
// label identifying why the fragment was dropped.
func reassemblyDropReason(err error) string {
	switch {
	case errors.Is(err, blob.ErrInvalidUDPVersion):
		return "invalid-udp-version"
	case errors.Is(err, blob.ErrInvalidUDPPacketType):
		return "invalid-udp-packet-type"
	case errors.Is(err, blob.ErrInvalidUDPLength):
		return "invalid-udp-length"
	case errors.Is(err, blob.ErrFragmentOutOfOrder):
		return "out-of-order"
	case errors.Is(err, blob.ErrFragmentBlobMismatch):
		return "blob-mismatch"
	default:
		return "read-error"
	}
}

// startHTTPServers registers the metrics HTTP server goroutine.
func startHTTPServers(ctx context.Context, g *errgroup.Group, cfg *config.Config, metricsSrv *http.Server, logger *slog.Logger) {
	lc := net.ListenConfig{}

	g.Go(func() error {
		logger.Info("metrics server listening",
			slog.String("addr", cfg.Metrics.Addr),
			slog.String("path", cfg.Metrics.Path),
		)
		return listenAndServe(ctx, &lc, metricsSrv, cfg.Metrics.Addr)
	})
}

// startDaemonGoroutines registers the watchdog and SIGHUP reload goroutines.
func startDaemonGoroutines(ctx context.Context, g *errgroup.Group, configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	g.Go(func() error {
		return runWatchdog(ctx, logger)
	})

	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sigHUP)
		handleSIGHUP(ctx, sigHUP, configPath, logLevel, logger)
		return nil
	})
}

// -------------------------------------------------------------------------
// Systemd Integration — sd_notify + watchdog
// -------------------------------------------------------------------------

func notifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("failed to notify systemd readiness", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: READY")
	}
}

func notifyStopping(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("failed to notify systemd stopping", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: STOPPING")
	}
}

// runWatchdog sends periodic watchdog keepalives to systemd at half the
// configured watchdog interval. Exits immediately if no watchdog is set.
func runWatchdog(ctx context.Context, logger *slog.Logger) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("failed to check systemd watchdog", slog.String("error", err.Error()))
		return nil
	}
	if interval == 0 {
		logger.Debug("systemd watchdog not configured, skipping keepalive")
		return nil
	}

	tickInterval := interval / 2
	logger.Info("systemd watchdog enabled",
		slog.Duration("watchdog_sec", interval),
		slog.Duration("keepalive_interval", tickInterval),
	)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, wdErr := daemon.SdNotify(false, daemon.SdNotifyWatchdog); wdErr != nil {
				logger.Warn("failed to send watchdog keepalive", slog.String("error", wdErr.Error()))
			}
		}
	}
}

// -------------------------------------------------------------------------
// SIGHUP Reload — log level only
// -------------------------------------------------------------------------

// handleSIGHUP reloads the dynamic log level on SIGHUP. Control-session
// parameters (host, port, credentials) take effect only on the next
// process start: re-dialing a live session from a signal handler risks
// tearing down acquisition mid-frame for no corresponding benefit here.
func handleSIGHUP(ctx context.Context, sigHUP <-chan os.Signal, configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigHUP:
			logger.Info("received SIGHUP, reloading log level")
			reloadLogLevel(configPath, logLevel, logger)
		}
	}
}

func reloadLogLevel(configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings", slog.String("error", err.Error()))
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)

	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)
}

// -------------------------------------------------------------------------
// Graceful Shutdown
// -------------------------------------------------------------------------

// gracefulShutdown signals systemd, stops acquisition, and shuts down the
// metrics server within shutdownTimeout.
func gracefulShutdown(ctx context.Context, device *visionary.Device, logger *slog.Logger, fr *trace.FlightRecorder, servers ...*http.Server) error {
	logger.Info("initiating graceful shutdown")
	notifyStopping(logger)

	stopCtx, cancelStop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	if !device.StopAcquisition(stopCtx) {
		logger.Warn("device did not acknowledge stop-acquisition request")
	}
	cancelStop()

	if fr != nil {
		fr.Stop()
		logger.Debug("flight recorder stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown server: %w", err))
		}
	}
	return shutdownErr
}

// -------------------------------------------------------------------------
// Flight Recorder — Go 1.26 runtime/trace
// -------------------------------------------------------------------------

func startFlightRecorder(logger *slog.Logger) *trace.FlightRecorder {
	fr := trace.NewFlightRecorder(trace.FlightRecorderConfig{
		MinAge:   flightRecorderMinAge,
		MaxBytes: flightRecorderMaxBytes,
	})

	if err := fr.Start(); err != nil {
		logger.Warn("failed to start flight recorder", slog.String("error", err.Error()))
		return nil
	}

	logger.Info("flight recorder started",
		slog.Duration("min_age", flightRecorderMinAge),
		slog.Uint64("max_bytes", flightRecorderMaxBytes),
	)

	return fr
}

// -------------------------------------------------------------------------
// Server Setup
// -------------------------------------------------------------------------

func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
