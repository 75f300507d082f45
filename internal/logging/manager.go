package logging

import (
	"fmt"
	"sync"
)

// LoggerManager хранит по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var manager = &LoggerManager{loggers: make(map[string]*Logger)}

// GetLoggerManager возвращает общий менеджер процесса
func GetLoggerManager() *LoggerManager {
	return manager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении.
// Логгер создаётся с настройками Configure, действующими на этот момент.
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l, nil
	}
	l, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = l
	return l, nil
}

// MustGetLogger как GetLogger, но при ошибке файлового вывода
// отдаёт консольный логгер вместо ошибки
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	l, err := lm.GetLogger(component)
	if err == nil {
		return l
	}
	defaultLogger.Warn("логгер %s недоступен, используется консоль: %v", component, err)
	return &Logger{
		component:       component,
		consoleLogger:   defaultLogger.consoleLogger,
		minConsoleLevel: INFO,
		minFileLevel:    ERROR,
	}
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var firstErr error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("закрытие логгера %s: %w", component, err)
		}
		delete(lm.loggers, component)
	}
	return firstErr
}

// GetComponentLogger - короткий путь к MustGetLogger
func GetComponentLogger(component string) *Logger {
	return manager.MustGetLogger(component)
}

func GetWorldLogger() *Logger { return GetComponentLogger("world") }

func GetScheduleLogger() *Logger { return GetComponentLogger("schedule") }

func GetChangefeedLogger() *Logger { return GetComponentLogger("changefeed") }
