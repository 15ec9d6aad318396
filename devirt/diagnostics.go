package devirt

import (
	"sync"

	"go.uber.org/zap"
)

// Diagnostics receives soft failures that do not stop resolution.
type Diagnostics interface {
	Error(message string)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(message string)

func (f DiagnosticsFunc) Error(message string) { f(message) }

// ZapDiagnostics reports diagnostics at error level on a zap logger.
type ZapDiagnostics struct {
	logger *zap.Logger
}

func NewZapDiagnostics(logger *zap.Logger) *ZapDiagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapDiagnostics{logger: logger}
}

func (d *ZapDiagnostics) Error(message string) {
	d.logger.Error(message, zap.Error(ErrUnresolvedAssembly))
}

// Collector keeps every diagnostic message. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *Collector) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages returns a copy of the collected messages.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

// Tee forwards each message to every sink in order.
type Tee []Diagnostics

func (t Tee) Error(message string) {
	for _, d := range t {
		d.Error(message)
	}
}
