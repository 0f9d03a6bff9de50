package db

import (
	"context"
	"sync"
	"time"
)

// DefaultChannelCapacity is the default buffer size for queued journal writes.
const DefaultChannelCapacity = 100

// WriteOperation is one queued journal write.
type WriteOperation struct {
	// Data holds the write payload
	Data interface{}
	// Timestamp when the operation was queued
	Timestamp time.Time
}

// WriteHandler processes one queued write. Implementations handle their own
// error logging; a failed journal write is never retried or surfaced.
type WriteHandler func(op WriteOperation) error

// AsyncWriter decouples journal writes from the code paths that produce them:
// Write enqueues without blocking and a background goroutine drains the queue.
// When the buffer is full the write is dropped, never the caller's time.
type AsyncWriter struct {
	writeChan chan WriteOperation
	handler   WriteHandler
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	mu        sync.Mutex
}

// NewAsyncWriter creates an async writer with the default buffer capacity.
func NewAsyncWriter(handler WriteHandler) *AsyncWriter {
	return NewAsyncWriterWithCapacity(handler, DefaultChannelCapacity)
}

// NewAsyncWriterWithCapacity creates an async writer with a custom buffer.
func NewAsyncWriterWithCapacity(handler WriteHandler, capacity int) *AsyncWriter {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter{
		writeChan: make(chan WriteOperation, capacity),
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins background processing. Must be called before writes are drained.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processWrites()
}

func (w *AsyncWriter) processWrites() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case op, ok := <-w.writeChan:
			if !ok {
				return
			}
			_ = w.handler(op)
		}
	}
}

// drain processes whatever is still buffered at shutdown.
func (w *AsyncWriter) drain() {
	for {
		select {
		case op, ok := <-w.writeChan:
			if !ok {
				return
			}
			_ = w.handler(op)
		default:
			return
		}
	}
}

// Write queues a journal write without blocking. Returns false when the
// buffer is full and the write was dropped.
func (w *AsyncWriter) Write(data interface{}) bool {
	op := WriteOperation{Data: data, Timestamp: time.Now()}
	select {
	case w.writeChan <- op:
		return true
	default:
		return false
	}
}

// Pending returns the number of writes waiting in the buffer.
func (w *AsyncWriter) Pending() int {
	return len(w.writeChan)
}

// Stop cancels processing and waits for the buffered writes to drain.
func (w *AsyncWriter) Stop() {
	w.cancel()
	w.wg.Wait()
}
