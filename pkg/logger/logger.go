package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	logLevelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	currentLevel = INFO
	sink         *fileSink
	mu           sync.Mutex
)

type fileSink struct {
	file         *os.File
	path         string
	maxSizeBytes int64
	currentSize  int64
}

type LogEntry struct {
	Level     string         `json:"level"`
	Timestamp string         `json:"timestamp"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// EnableFile mirrors console logging into a JSON-lines file. When the file
// grows past maxSizeMB it is renamed aside and a fresh file is started.
func EnableFile(path string, maxSizeMB int) error {
	mu.Lock()
	defer mu.Unlock()

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	var size int64
	if stat, err := file.Stat(); err == nil {
		size = stat.Size()
	}
	if sink != nil && sink.file != nil {
		sink.file.Close()
	}
	sink = &fileSink{
		file:         file,
		path:         path,
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
		currentSize:  size,
	}
	return nil
}

func DisableFile() {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil && sink.file != nil {
		sink.file.Close()
	}
	sink = nil
}

func (s *fileSink) rotate() {
	s.file.Close()
	rotated := fmt.Sprintf("%s.%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, rotated); err != nil {
		log.Printf("failed to rotate log file: %v", err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("failed to reopen log file: %v", err)
		s.file = nil
		return
	}
	s.file = file
	s.currentSize = 0
}

func logMessage(level LogLevel, component, message string, fields map[string]any) {
	mu.Lock()
	defer mu.Unlock()

	if level < currentLevel {
		return
	}

	entry := LogEntry{
		Level:     logLevelNames[level],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	if sink != nil && sink.file != nil {
		if sink.maxSizeBytes > 0 && sink.currentSize >= sink.maxSizeBytes {
			sink.rotate()
		}
		if sink.file != nil {
			if data, err := json.Marshal(entry); err == nil {
				n, werr := sink.file.WriteString(string(data) + "\n")
				if werr == nil {
					sink.currentSize += int64(n)
				}
			}
		}
	}

	var fieldStr string
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for k, v := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		fieldStr = " {" + strings.Join(parts, ", ") + "}"
	}
	var componentStr string
	if component != "" {
		componentStr = " " + component + ":"
	}
	log.Printf("[%s] [%s]%s %s%s", entry.Timestamp, entry.Level, componentStr, message, fieldStr)

	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(message string) { logMessage(DEBUG, "", message, nil) }
func Info(message string)  { logMessage(INFO, "", message, nil) }
func Warn(message string)  { logMessage(WARN, "", message, nil) }
func Error(message string) { logMessage(ERROR, "", message, nil) }
func Fatal(message string) { logMessage(FATAL, "", message, nil) }

func DebugC(component, message string) { logMessage(DEBUG, component, message, nil) }
func InfoC(component, message string)  { logMessage(INFO, component, message, nil) }
func WarnC(component, message string)  { logMessage(WARN, component, message, nil) }
func ErrorC(component, message string) { logMessage(ERROR, component, message, nil) }
func FatalC(component, message string) { logMessage(FATAL, component, message, nil) }

func DebugCF(component, message string, fields map[string]any) {
	logMessage(DEBUG, component, message, fields)
}

func InfoCF(component, message string, fields map[string]any) {
	logMessage(INFO, component, message, fields)
}

func WarnCF(component, message string, fields map[string]any) {
	logMessage(WARN, component, message, fields)
}

func ErrorCF(component, message string, fields map[string]any) {
	logMessage(ERROR, component, message, fields)
}

func FatalCF(component, message string, fields map[string]any) {
	logMessage(FATAL, component, message, fields)
}
