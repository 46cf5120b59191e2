package logging

import (
	"log"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It defaults to a no-op logger so packages
// can log unconditionally; main replaces it via Init before serving.
var Log = zap.NewNop()

// Init builds the global logger. Production gets JSON output at Info level;
// development gets console output. LOG_DEBUG=true lowers the level to Debug,
// which enables the filter compiler's query dumps.
func Init(production, debug bool) {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Printf("Failed to build zap logger, logging disabled: %v", err)
		return
	}
	Log = logger
}

// Sync flushes buffered log entries. Called from main on shutdown.
func Sync() {
	_ = Log.Sync()
}
