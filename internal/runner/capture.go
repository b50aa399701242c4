package runner

import (
	"bytes"
	"sync"
	"time"
)

type eventSink struct {
	mu      sync.Mutex
	handler OutputHandler
}

func newEventSink(cfg RunConfig) *eventSink {
	if !cfg.Realtime || cfg.OnOutput == nil {
		return &eventSink{}
	}
	return &eventSink{handler: cfg.OnOutput}
}

func (s *eventSink) emit(stream Stream, chunk string) {
	if s.handler == nil || chunk == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler(OutputEvent{
		Stream:    stream,
		Chunk:     chunk,
		Timestamp: time.Now(),
	})
}

// capture accumulates one output stream and forwards it to the sink. The
// tail of the stream that could still be the start of a secret is held back
// until more output arrives or Flush is called.
type capture struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	pending string
	stream  Stream
	red     *redactor
	sink    *eventSink
}

func newCapture(stream Stream, red *redactor, sink *eventSink) *capture {
	return &capture{
		stream: stream,
		red:    red,
		sink:   sink,
	}
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.buf.Write(p)

	var ready string
	if c.sink.handler != nil {
		c.pending += string(p)
		cut := c.red.safeCut(c.pending)
		ready = c.pending[:cut]
		c.pending = c.pending[cut:]
	}
	c.mu.Unlock()

	c.sink.emit(c.stream, c.red.Redact(ready))

	return len(p), nil
}

// Flush emits whatever output is still held back.
func (c *capture) Flush() {
	c.mu.Lock()
	rest := c.pending
	c.pending = ""
	c.mu.Unlock()

	c.sink.emit(c.stream, c.red.Redact(rest))
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.red.Redact(c.buf.String())
}
