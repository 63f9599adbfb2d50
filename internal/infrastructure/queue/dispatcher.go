package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/core/ports"
	"github.com/swiftlogistics/order-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Enqueue once the dispatcher has been stopped.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher routes delivery updates to a fixed set of workers using
// consistent hashing on the order ID, guaranteeing per-order ordering.
type Dispatcher struct {
	workers   []chan ports.DeliveryUpdateInput
	processor ports.DeliveryProcessor
	log       zerolog.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.DeliveryProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.DeliveryUpdateInput, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.DeliveryUpdateInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled or
// after Stop once their channel is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the worker channels and waits for queued updates to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue sends an update to the worker responsible for its order. It blocks
// while that worker's buffer is full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, update ports.DeliveryUpdateInput) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(update.OrderID)
	select {
	case d.workers[idx] <- update:
		metrics.DeliveryUpdatesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueBatch enqueues multiple updates preserving per-order ordering. It
// returns the number accepted before the first failure.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, updates []ports.DeliveryUpdateInput) (int, error) {
	for i, u := range updates {
		if err := d.Enqueue(ctx, u); err != nil {
			return i, err
		}
	}
	return len(updates), nil
}

// shardIndex maps an order ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.DeliveryUpdateInput) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			metrics.DeliveryUpdatesQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			start := time.Now()
			err := d.processor.Process(ctx, update)
			outcome := "ok"
			if err != nil {
				outcome = "error"
				d.log.Error().Err(err).
					Str("order_id", update.OrderID).
					Str("status", update.Status).
					Int("worker_id", id).
					Msg("delivery update processing failed")
			}
			metrics.DeliveryUpdateDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		}
	}
}
