package cli

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kopia/repbytes/logging"
)

const logFileMode = 0o600

var logLevels = []string{"debug", "info", "warning", "error"}

type loggingFlags struct {
	logFile        string
	logLevel       string
	fileLogLevel   string
	jsonLogConsole bool
	forceColor     bool
	disableColor   bool

	svc appServices
}

func (c *loggingFlags) setup(svc appServices, app *kingpin.Application) {
	app.Flag("log-file", "Write logs to the given file.").Envar("REPBYTES_LOG_FILE").StringVar(&c.logFile)
	app.Flag("log-level", "Console log level").Default("info").EnumVar(&c.logLevel, logLevels...)
	app.Flag("file-log-level", "File log level").Default("debug").EnumVar(&c.fileLogLevel, logLevels...)
	app.Flag("json-log-console", "JSON log file").Hidden().BoolVar(&c.jsonLogConsole)
	app.Flag("force-color", "Force color output").Hidden().Envar("REPBYTES_FORCE_COLOR").BoolVar(&c.forceColor)
	app.Flag("disable-color", "Disable color output").Hidden().Envar("REPBYTES_DISABLE_COLOR").BoolVar(&c.disableColor)

	app.PreAction(c.initialize)

	c.svc = svc
}

func (c *loggingFlags) initialize(_ *kingpin.ParseContext) error {
	if c.forceColor {
		color.NoColor = false
	}

	if c.disableColor {
		color.NoColor = true
	}

	cores := []zapcore.Core{c.setupConsoleCore()}

	if c.logFile != "" {
		fc, err := c.setupLogFileCore()
		if err != nil {
			return err
		}

		cores = append(cores, fc)
	}

	rootLogger := zap.New(zapcore.NewTee(cores...))

	c.svc.setLoggerFactory(func(module string) logging.Logger {
		return rootLogger.Named(module).Sugar()
	})

	return nil
}

func (c *loggingFlags) setupConsoleCore() zapcore.Core {
	ec := zapcore.EncoderConfig{
		LevelKey:         "l",
		MessageKey:       "m",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	if c.jsonLogConsole {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		ec.NameKey = "n"
		ec.EncodeName = zapcore.FullNameEncoder
	} else {
		ec.EncodeLevel = func(l zapcore.Level, pae zapcore.PrimitiveArrayEncoder) {
			if l == zap.InfoLevel {
				// info log does not have a prefix.
				return
			}

			if color.NoColor {
				zapcore.CapitalLevelEncoder(l, pae)
			} else {
				zapcore.CapitalColorLevelEncoder(l, pae)
			}
		}
	}

	return zapcore.NewCore(
		jsonOrConsoleEncoder(ec, c.jsonLogConsole),
		zapcore.Lock(zapcore.AddSync(c.svc.stderr())),
		logLevelFromFlag(c.logLevel),
	)
}

func (c *loggingFlags) setupLogFileCore() (zapcore.Core, error) {
	fname, err := filepath.Abs(c.logFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve log file path")
	}

	f, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "unable to open log file")
	}

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "t",
			LevelKey:       "l",
			NameKey:        "n",
			MessageKey:     "m",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		}),
		zapcore.Lock(f),
		logLevelFromFlag(c.fileLogLevel),
	), nil
}

func jsonOrConsoleEncoder(ec zapcore.EncoderConfig, isJSON bool) zapcore.Encoder {
	if isJSON {
		return zapcore.NewJSONEncoder(ec)
	}

	return zapcore.NewConsoleEncoder(ec)
}

func logLevelFromFlag(levelString string) zapcore.LevelEnabler {
	switch levelString {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.FatalLevel
	}
}
