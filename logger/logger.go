package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log = logrus.New()

type LoggerConfig struct {
	LogLevel     string
	LogFileName  string
	LogFileSize  int
	LogFileCount int
	LogCompress  bool
	// LogToStdoutOnly skips the rotated file, used by tests and containers
	LogToStdoutOnly bool
}

const defaultLogFile = "holmes_admin.log"

func InitLogger(config LoggerConfig) {
	Log.SetFormatter(&logrus.TextFormatter{})
	SetLevel(config.LogLevel)

	if config.LogToStdoutOnly {
		Log.SetOutput(os.Stdout)
		return
	}
	if config.LogFileName == "" {
		config.LogFileName = defaultLogFile
	}
	if config.LogFileSize == 0 {
		config.LogFileSize = 10
	}
	if config.LogFileCount == 0 {
		config.LogFileCount = 5
	}
	mw := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   config.LogFileName,
		MaxSize:    config.LogFileSize, // megabytes
		MaxBackups: config.LogFileCount,
		MaxAge:     28,                 //days
		Compress:   config.LogCompress, // disabled by default
	})
	Log.SetOutput(mw)
}

// SetLevel maps the config level names onto logrus. Unknown names fall back to info.
func SetLevel(level string) {
	switch {
	case strings.EqualFold(level, "Debug"):
		Log.SetLevel(logrus.DebugLevel)
	case strings.EqualFold(level, "Warning"), strings.EqualFold(level, "Warn"):
		Log.SetLevel(logrus.WarnLevel)
	case strings.EqualFold(level, "Error"):
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}
}
