// Package health отдаёт состояние сервиса по HTTP: сводный статус из
// зарегистрированных проверок (в первую очередь — probe бэкенда хранилища).
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status представляет статус компонента.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — ответ health-эндпоинта.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker выполняет проверку одного компонента.
type Checker interface {
	Check() Check
}

// Handler обрабатывает health-запросы.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

// NewHandler создаёт health handler.
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker регистрирует проверку компонента.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

func (h *Handler) snapshot() map[string]Checker {
	h.mu.RLock()
	defer h.mu.RUnlock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		checkers[name] = checker
	}
	return checkers
}

// ServeHTTP выполняет все проверки и отдаёт сводный статус.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for name, checker := range h.snapshot() {
		check := checker.Check()
		checks[name] = check
		if check.Status == StatusUnhealthy {
			overall = StatusUnhealthy
		}
	}

	response := Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// LivenessHandler — простой liveness probe, всегда 200.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, пока хоть одна проверка нездорова.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	for _, checker := range h.snapshot() {
		if checker.Check().Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker — проверка на основе функции.
type SimpleChecker struct {
	name    string
	checkFn func() error
}

// NewSimpleChecker создаёт проверку из функции.
func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{name: name, checkFn: checkFn}
}

// Check выполняет проверку.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.checkFn()
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
	}
}
