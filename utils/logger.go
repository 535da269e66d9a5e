package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)
)

func newLogger(out *os.File, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(level)
	return l
}

// InitLogger applies the configured level and format ("text" or "json").
// ErrorLogger never drops below warn.
func InitLogger(level, format string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}

	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(format, "json") {
		formatter = &logrus.JSONFormatter{}
	}

	InfoLogger.SetFormatter(formatter)
	InfoLogger.SetLevel(lvl)

	ErrorLogger.SetFormatter(formatter)
	if lvl > logrus.WarnLevel {
		ErrorLogger.SetLevel(logrus.WarnLevel)
	} else {
		ErrorLogger.SetLevel(lvl)
	}
	return nil
}
