package config

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&timezoneFormatter{inner: &logrus.JSONFormatter{}, loc: time.UTC})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// ConfigureLogger applies level and log timezone from settings.
// The timezone only changes how timestamps are rendered.
func ConfigureLogger(logger *logrus.Logger, s *Settings) error {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(s.LogTimezone)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetFormatter(&timezoneFormatter{inner: &logrus.JSONFormatter{}, loc: loc})
	return nil
}

type timezoneFormatter struct {
	inner logrus.Formatter
	loc   *time.Location
}

func (f *timezoneFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if f.loc != nil {
		entry.Time = entry.Time.In(f.loc)
	}
	return f.inner.Format(entry)
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
