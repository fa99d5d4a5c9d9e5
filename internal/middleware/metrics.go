package middleware

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	PromptsTotal       uint64
	PromptsInFlight    uint64
	PromptsFailed      uint64
	DocumentsUploaded  uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementPrompts increments the provider call counter
func IncrementPrompts() {
	atomic.AddUint64(&globalMetrics.PromptsTotal, 1)
}

// IncrementPromptsInFlight increments the running provider call counter
func IncrementPromptsInFlight() {
	atomic.AddUint64(&globalMetrics.PromptsInFlight, 1)
}

// DecrementPromptsInFlight decrements the running provider call counter
func DecrementPromptsInFlight() {
	atomic.AddUint64(&globalMetrics.PromptsInFlight, ^uint64(0))
}

// IncrementPromptsFailed counts provider calls that ended in a soft error
func IncrementPromptsFailed() {
	atomic.AddUint64(&globalMetrics.PromptsFailed, 1)
}

// IncrementDocuments counts successfully extracted uploads
func IncrementDocuments() {
	atomic.AddUint64(&globalMetrics.DocumentsUploaded, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"prompts_total":        atomic.LoadUint64(&globalMetrics.PromptsTotal),
		"prompts_in_flight":    atomic.LoadUint64(&globalMetrics.PromptsInFlight),
		"prompts_failed":       atomic.LoadUint64(&globalMetrics.PromptsFailed),
		"documents_uploaded":   atomic.LoadUint64(&globalMetrics.DocumentsUploaded),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		// Wrap response writer to capture status
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		// Track success/failure based on status code
		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON. documents, when set, reports how
// many sessions currently hold a document.
func MetricsHandler(documents func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := GetMetrics()
		if documents != nil {
			m["documents_in_memory"] = documents()
		}
		WriteJSON(w, http.StatusOK, m)
	}
}
