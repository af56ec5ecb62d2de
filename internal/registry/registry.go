// Package registry holds every device known to this instance and serialises
// all mutation of their consumption plans behind a single reader-writer
// lock, matching §5's concurrency model: requests and timer-fired actions
// both reach the same shared state, readers (list/fetch) take RLock, writers
// (schedule/cancel/timer-fire) take Lock.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/domain"
	"github.com/homepower/switchplanner/internal/metrics"
	"github.com/homepower/switchplanner/internal/planner"
	"github.com/homepower/switchplanner/internal/priceprovider"
	"github.com/homepower/switchplanner/internal/scheduler"
	"go.uber.org/zap"
)

// Entry is a configured device: its registry key, display name, and the
// gateway entity id used to address it.
type Entry struct {
	ID        string
	Name      string
	GatewayID string
}

// Registry is the device registry / consumption service (§4.7).
type Registry struct {
	mu        sync.RWMutex
	consumers map[string]*domain.PowerConsumer

	assembler *priceprovider.Assembler
	scheduler *scheduler.Scheduler
	log       *zap.Logger
}

func New(entries []Entry, assembler *priceprovider.Assembler, sched *scheduler.Scheduler, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	consumers := make(map[string]*domain.PowerConsumer, len(entries))
	for _, e := range entries {
		consumers[e.ID] = &domain.PowerConsumer{ID: e.ID, Name: e.Name, GatewayID: e.GatewayID}
	}

	r := &Registry{consumers: consumers, assembler: assembler, scheduler: sched, log: log}
	sched.SetRegistry(r)
	return r
}

// ListModels projects every device into its client-facing representation.
func (r *Registry) ListModels(now time.Time) []domain.PowerConsumerModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]domain.PowerConsumerModel, 0, len(r.consumers))
	for _, c := range r.consumers {
		models = append(models, c.ToModel(now))
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models
}

// WithWriteLock satisfies scheduler.DeviceLocker: it is how a fired timer
// reacquires exclusive access to mutate a specific device's plan state.
func (r *Registry) WithWriteLock(deviceID string, fn func(consumer *domain.PowerConsumer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.consumers[deviceID])
}

// Schedule builds and dispatches a new consumption plan for device id.
func (r *Registry) Schedule(ctx context.Context, id string, consumptionDuration time.Duration, finishAt time.Time) (domain.PowerConsumerModel, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	consumer, ok := r.consumers[id]
	if !ok {
		return domain.PowerConsumerModel{}, apperr.NewNotFound("power consumer %q not found", id)
	}
	if consumer.CurrentPlan != nil && consumer.CurrentPlan.State == domain.ConsumptionPlanProcessing {
		metrics.RecordPlanCreated(false)
		return domain.PowerConsumerModel{}, apperr.NewUser("power consumer %q already has a consumption plan in progress", id)
	}

	priceList, err := r.assembler.Assemble(ctx, now, finishAt)
	if err != nil {
		metrics.RecordPlanCreated(false)
		return domain.PowerConsumerModel{}, err
	}

	items, err := planner.Plan(priceList, consumptionDuration, now, finishAt, now)
	if err != nil {
		metrics.RecordPlanCreated(false)
		return domain.PowerConsumerModel{}, err
	}

	plan := &domain.ConsumptionPlan{
		ID:                   uuid.NewString(),
		CreatedAt:            now,
		ConsumptionDuration:  consumptionDuration,
		FinishAt:             finishAt,
		ConsumptionPlanItems: items,
		State:                domain.ConsumptionPlanProcessing,
	}
	consumer.CurrentPlan = plan

	r.scheduler.ScheduleActions(id, consumer, now)
	metrics.RecordPlanCreated(true)

	r.log.Info("consumption plan scheduled",
		zap.String("device_id", id), zap.String("plan_id", plan.ID), zap.Duration("duration", consumptionDuration))

	return consumer.ToModel(now), nil
}

// Cancel applies the cancellation state machine (§4.6) to device id's
// current plan, if any.
func (r *Registry) Cancel(ctx context.Context, id string) (domain.PowerConsumerModel, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	consumer, ok := r.consumers[id]
	if !ok {
		return domain.PowerConsumerModel{}, apperr.NewNotFound("power consumer %q not found", id)
	}

	cancelPlan(consumer, now, r.scheduler)

	r.log.Info("consumption plan cancel requested", zap.String("device_id", id))
	return consumer.ToModel(now), nil
}
