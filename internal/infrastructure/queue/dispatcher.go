package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/api/metrics"
	"github.com/vermahardware/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ViewRecorder persists a single product view.
type ViewRecorder interface {
	Record(ctx context.Context, ev ports.ViewEvent) error
}

// Dispatcher routes product views to a fixed set of workers by hashing the
// user id, so each user's views are applied in the order they happened.
type Dispatcher struct {
	workers  []chan ports.ViewEvent
	recorder ViewRecorder
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ViewRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.ViewEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ViewEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands the view to the worker owning its user. Views are best
// effort: when that worker's buffer is full the view is dropped and Enqueue
// reports false.
func (d *Dispatcher) Enqueue(ev ports.ViewEvent) bool {
	idx := d.shardIndex(ev.UserID)
	select {
	case d.workers[idx] <- ev:
		metrics.ViewQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.log.Warn().Str("user_id", ev.UserID).Int("worker_id", idx).Msg("view queue full, dropping view")
		return false
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ViewEvent) {
	defer d.wg.Done()
	depth := metrics.ViewQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.recorder.Record(ctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("user_id", ev.UserID).
					Str("product_id", ev.ProductID).
					Int("worker_id", id).
					Msg("view recording failed")
			}
		}
	}
}
