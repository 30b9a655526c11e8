package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/sirupsen/logrus"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger func() Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(l Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: func() Logger { return l }}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(name string, fn func()) {
	go func() {
		defer rh.recover(name)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.recover(name)
		fn(ctx)
	}()
}

// Run выполняет fn в текущей горутине, перехватывая panic. Возвращает true, если panic был.
func (rh *RecoveryHandler) Run(name string, fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			rh.report(name, r)
		}
	}()
	fn()
	return false
}

func (rh *RecoveryHandler) recover(name string) {
	if r := recover(); r != nil {
		rh.report(name, r)
	}
}

func (rh *RecoveryHandler) report(name string, r any) {
	rh.logger().WithFields(logrus.Fields{
		"goroutine": name,
		"panic":     r,
		"stack":     string(debug.Stack()),
	}).Error("goroutine: panic перехвачен")
}

// DefaultRecoveryHandler - глобальный обработчик, пишет в логгер приложения
var DefaultRecoveryHandler = &RecoveryHandler{logger: func() Logger { return logger.Get() }}

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(name string, fn func()) {
	DefaultRecoveryHandler.SafeGo(name, fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, name, fn)
}
