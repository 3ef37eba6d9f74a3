package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
	"github.com/assetverse/asset-management/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher writes request audit events through a fixed set of workers.
// Events are sharded on the request id so each request's trail is written
// in transition order.
type Dispatcher struct {
	workers []chan domain.RequestEvent
	repo    ports.EventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.RequestAuditor = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.EventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.RequestEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.RequestEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. When ctx is cancelled each worker flushes
// what is already buffered and exits; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an event to its shard without blocking. A full shard drops
// the event and counts it.
func (d *Dispatcher) Enqueue(event domain.RequestEvent) {
	idx := d.shardIndex(event.RequestID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("request_id", event.RequestID).
			Str("to", string(event.To)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a request id deterministically to a worker index.
func (d *Dispatcher) shardIndex(requestID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.RequestEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-ch:
					d.write(context.WithoutCancel(ctx), id, event)
				default:
					metrics.AuditQueueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		case event := <-ch:
			d.write(ctx, id, event)
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.RequestEvent) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("request_id", event.RequestID).
			Str("to", string(event.To)).
			Int("worker_id", id).
			Msg("audit event write failed")
	}
}
