package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tictac-arena/internal/config"
)

var sink io.Writer = os.Stdout

// Init configures the global zerolog logger from cfg. With LOG_FILE set the
// JSON stream lands in a size-capped file instead of stdout. LOG_PRETTY only
// applies to the stdout sink.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	sink = os.Stdout
	if cfg.File != "" {
		fs, err := newFileSink(cfg.File, cfg.MaxMB)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.File).Msg("log file unavailable, staying on stdout")
		} else {
			sink = fs
		}
	}

	output := sink
	if cfg.Pretty && cfg.File == "" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink Init selected, so the HTTP request logger can
// share it. Before Init it is stdout.
func Writer() io.Writer {
	return sink
}
