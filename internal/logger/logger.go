package logger

import (
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер под окружение.
// development: debug + текстовый формат, остальное: info + JSON.
func Init(env string) {
	Log = logrus.New()

	if env == "development" {
		Log.SetLevel(logrus.DebugLevel)
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		return
	}

	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLevel переопределяет уровень логирования (LOG_LEVEL).
func SetLevel(level string) {
	if Log == nil || level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.WithError(err).Warn("logger: неизвестный уровень логирования, оставляем текущий")
		return
	}
	Log.SetLevel(lvl)
}

// Get возвращает логгер приложения; до Init отдаёт стандартный логгер logrus,
// чтобы пакеты можно было использовать в тестах без инициализации.
func Get() *logrus.Logger {
	if Log == nil {
		return logrus.StandardLogger()
	}
	return Log
}

// WithFields сокращение для logger.Get().WithFields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}
