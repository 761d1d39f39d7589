package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/poleposition/internal/query"
)

// AuditFileName is the audit log written under the audit directory.
const AuditFileName = "audit.jsonl"

// maxParamValueLen bounds how much of a free-text argument reaches the log.
const maxParamValueLen = 64

// AuditEntry represents a single audit log entry for an MCP tool invocation.
// It captures call metadata, never result payloads.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	Transport  string            `json:"transport"` // "mcp" or "ws"
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success", "not_found" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends audit entries to a JSONL file. It is safe for
// concurrent use. A nil AuditLogger is safe to use; all methods are no-ops
// on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger creates an audit logger writing to dir/audit.jsonl.
//
// If the file cannot be created, a warning is printed to stderr and nil is
// returned (non-fatal).
func NewAuditLogger(dir string) *AuditLogger {
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, AuditFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as a single JSON line. Safe to call on nil receiver.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(data)
}

// Close closes the audit file. Safe to call on nil receiver.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// sanitizeToolParams extracts loggable metadata from tool arguments.
//
// Driver and race queries are logged, truncated to a fixed length. Anything
// else is dropped. A "_param_count" key is always included.
func sanitizeToolParams(params map[string]any) map[string]string {
	if params == nil {
		return nil
	}

	safeValueParams := map[string]bool{
		"driver":  true,
		"driver1": true,
		"driver2": true,
		"race":    true,
	}

	result := make(map[string]string)
	count := 0
	for key, val := range params {
		s := fmt.Sprintf("%v", val)
		if s == "" {
			continue
		}
		count++
		if !safeValueParams[key] {
			continue
		}
		if r := []rune(s); len(r) > maxParamValueLen {
			s = string(r[:maxParamValueLen]) + "..."
		}
		result[key] = s
	}
	result["_param_count"] = fmt.Sprintf("%d", count)

	return result
}

// auditStatus maps a tool error onto the audit status field.
func auditStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case query.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// LogCall records one tool invocation that started at start. params are
// the raw tool arguments; only sanitized metadata is written. Safe to call
// on nil receiver.
func (a *AuditLogger) LogCall(toolName, transport string, start time.Time, err error, params map[string]any) {
	if a == nil {
		return
	}
	a.Log(newAuditEntry(toolName, transport, start, err, sanitizeToolParams(params)))
}

func newAuditEntry(toolName, transport string, start time.Time, err error, params map[string]string) AuditEntry {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	if transport == "" {
		transport = "mcp"
	}
	return AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		Transport:  transport,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     auditStatus(err),
		Error:      errMsg,
		Params:     params,
	}
}

// auditTool logs a tool invocation to the audit log and at debug level.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string, transport string) {
	entry := newAuditEntry(toolName, transport, start, err, params)
	s.logger.Debug("tool call", "tool", toolName, "status", entry.Status, "duration_ms", entry.DurationMs)
	s.auditLogger.Log(entry)
}
