// Package logging provides structured logging channels for the compliance
// funnel service. Each subsystem gets one slog.Logger tagged with its channel
// name. Its level lives in a slog.LevelVar, so loggers already handed out
// follow runtime level changes.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Request handling
	ChannelHTTP Channel = "http"

	// Business logic channels
	ChannelFunnel  Channel = "funnel"  // Scan simulation and lead capture
	ChannelReport  Channel = "report"  // Report cache and PDF generation
	ChannelPayment Channel = "payment" // Checkout sessions and webhooks
	ChannelEmail   Channel = "email"   // Transactional email

	// Infrastructure channels
	ChannelCleanup Channel = "cleanup" // Report retention sweeps
	ChannelPerf    Channel = "performance"
)

var allChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelHTTP,
	ChannelFunnel, ChannelReport, ChannelPayment, ChannelEmail,
	ChannelCleanup, ChannelPerf,
}

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels map[Channel]*slog.Logger
	levels   map[Channel]*slog.LevelVar
	config   *LoggerConfig
	files    []*os.File
	configMu sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   // Whether to write logs to per-channel files
	OutputToConsole bool   // Whether to write logs to stdout
	LogDirectory    string // Directory for log files

	// Output, when set, replaces the console writer. Tests use it to capture logs.
	Output io.Writer

	JSONFormat    bool
	IncludeSource bool

	DefaultLevel  slog.Level
	ChannelLevels map[Channel]slog.Level
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.ChannelLevels == nil {
		config.ChannelLevels = make(map[Channel]slog.Level)
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		levels:   make(map[Channel]*slog.LevelVar),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	for _, channel := range allChannels {
		channelLogger, level, err := logger.createChannelLogger(channel)
		if err != nil {
			_ = logger.Close()
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
		logger.levels[channel] = level
	}

	return logger, nil
}

// NewWriterLogger returns a logger that writes every channel to w at the
// given level. Used by tests and the CLI.
func NewWriterLogger(w io.Writer, level slog.Level) *ChanneledLogger {
	cfg := DefaultLoggerConfig()
	cfg.Output = w
	cfg.DefaultLevel = level
	logger, err := NewChanneledLogger(cfg)
	if err != nil {
		// unreachable: no files are opened
		panic(err)
	}
	return logger
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *ChanneledLogger {
	return NewWriterLogger(io.Discard, slog.LevelError)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// createChannelLogger creates the logger for a channel and the LevelVar
// that gates it. Called once per channel.
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, *slog.LevelVar, error) {
	level := new(slog.LevelVar)
	level.Set(cl.config.DefaultLevel)
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level.Set(channelLevel)
	}

	var writers []io.Writer

	if cl.config.Output != nil {
		writers = append(writers, cl.config.Output)
	} else if cl.config.OutputToConsole {
		writers = append(writers, os.Stdout)
	}

	if cl.config.OutputToFile {
		filename := fmt.Sprintf("%s.log", string(channel))
		path := filepath.Join(cl.config.LogDirectory, filename)

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		cl.files = append(cl.files, file)
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), level, nil
}

func (cl *ChanneledLogger) get(channel Channel) *slog.Logger {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()
	return cl.channels[channel]
}

func (cl *ChanneledLogger) System() *slog.Logger   { return cl.get(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger  { return cl.get(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger { return cl.get(ChannelShutdown) }
func (cl *ChanneledLogger) HTTP() *slog.Logger     { return cl.get(ChannelHTTP) }
func (cl *ChanneledLogger) Funnel() *slog.Logger   { return cl.get(ChannelFunnel) }
func (cl *ChanneledLogger) Report() *slog.Logger   { return cl.get(ChannelReport) }
func (cl *ChanneledLogger) Payment() *slog.Logger  { return cl.get(ChannelPayment) }
func (cl *ChanneledLogger) Email() *slog.Logger    { return cl.get(ChannelEmail) }
func (cl *ChanneledLogger) Cleanup() *slog.Logger  { return cl.get(ChannelCleanup) }
func (cl *ChanneledLogger) Perf() *slog.Logger     { return cl.get(ChannelPerf) }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	if logger := cl.get(channel); logger != nil {
		return logger
	}
	return cl.get(ChannelSystem)
}

// WithOperation returns a logger with operation context
func (cl *ChanneledLogger) WithOperation(channel Channel, operation string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("operation", operation))
}

// LogError logs an error with appropriate context and channel
func (cl *ChanneledLogger) LogError(channel Channel, operation string, err error, metadata map[string]any) {
	logger := cl.GetChannel(channel).With(
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	for key, value := range metadata {
		logger = logger.With(slog.Any(key, value))
	}
	logger.Error("Operation failed")
}

// LogStartupPhase logs application startup phases
func (cl *ChanneledLogger) LogStartupPhase(phase string, duration time.Duration, success bool) {
	logger := cl.Startup().With(
		slog.String("phase", phase),
		slog.Duration("duration", duration),
		slog.Bool("success", success),
	)
	if success {
		logger.Info("Startup phase completed")
	} else {
		logger.Error("Startup phase failed")
	}
}

// MaskEmail partially masks an email address for logs.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "****"
	}
	local := email[:at]
	if len(local) <= 2 {
		return "**" + email[at:]
	}
	return local[:2] + "****" + email[at:]
}

// SetChannelLevel changes the level of a channel in place. Every logger
// previously returned for the channel observes the new level.
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	cl.configMu.Lock()
	levelVar, ok := cl.levels[channel]
	if !ok {
		cl.configMu.Unlock()
		return fmt.Errorf("channel %s does not exist", channel)
	}
	levelVar.Set(level)
	cl.config.ChannelLevels[channel] = level
	cl.configMu.Unlock()

	cl.System().Info("Channel log level updated",
		slog.String("channel", string(channel)),
		slog.String("level", level.String()),
	)
	return nil
}

// GetChannelLevels returns the current log levels for all channels.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()

	levels := make(map[string]string, len(cl.levels))
	for channel, level := range cl.levels {
		levels[string(channel)] = level.Level().String()
	}
	return levels
}

// Close closes any open log files.
func (cl *ChanneledLogger) Close() error {
	cl.configMu.Lock()
	defer cl.configMu.Unlock()

	var firstErr error
	for _, f := range cl.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cl.files = nil
	return firstErr
}
