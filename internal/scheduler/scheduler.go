// Package scheduler realises a consumption plan's switch actions as
// wall-clock events against the device gateway.
package scheduler

import (
	"context"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
	"github.com/homepower/switchplanner/internal/events"
	"github.com/homepower/switchplanner/internal/gateway"
	"github.com/homepower/switchplanner/internal/metrics"
	"go.uber.org/zap"
)

// InlineThreshold is epsilon: actions due this soon or sooner are executed
// synchronously rather than handed to a timer.
const InlineThreshold = 15 * time.Second

// DeviceLocker is the back-reference into the registry that lets a fired
// timer reacquire the writer lock before mutating shared plan state. The
// registry implements this; Scheduler does not own it.
type DeviceLocker interface {
	WithWriteLock(deviceID string, fn func(consumer *domain.PowerConsumer))
}

// Scheduler drives switch-action execution for every registered device.
type Scheduler struct {
	registry  DeviceLocker
	gateway   gateway.Switcher
	publisher events.Publisher
	log       *zap.Logger
}

func New(gw gateway.Switcher, publisher events.Publisher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewNoop()
	}
	return &Scheduler{gateway: gw, publisher: publisher, log: log}
}

// SetRegistry wires the back-reference used by fired timers. Called once
// during startup, after both the registry and scheduler exist.
func (s *Scheduler) SetRegistry(r DeviceLocker) {
	s.registry = r
}

// ScheduleActions arranges execution of every Scheduled action belonging to
// consumer's current plan. Called with the registry's writer lock already
// held by the caller (Registry.Schedule): actions due inline execute
// synchronously within that same lock hold; later actions are handed to
// time.AfterFunc timers that reacquire the lock on their own when they fire.
func (s *Scheduler) ScheduleActions(deviceID string, consumer *domain.PowerConsumer, now time.Time) {
	plan := consumer.CurrentPlan
	if plan == nil {
		return
	}

	inlineRan := false
	for _, action := range plan.AllSwitchActions() {
		if !action.At.After(now.Add(InlineThreshold)) {
			action.At = now
			s.execute(consumer, action, now)
			inlineRan = true
			continue
		}

		delay := action.At.Sub(now)
		actionID := action.ID
		time.AfterFunc(delay, func() {
			s.fire(deviceID, actionID)
		})
	}

	if inlineRan {
		s.reevaluate(consumer)
	}
}

// fire is the timer callback: it reacquires the registry's writer lock,
// locates the action by id, and executes it if still Scheduled.
func (s *Scheduler) fire(deviceID, actionID string) {
	if s.registry == nil {
		return
	}
	s.registry.WithWriteLock(deviceID, func(consumer *domain.PowerConsumer) {
		if consumer == nil || consumer.CurrentPlan == nil {
			return
		}
		for _, action := range consumer.CurrentPlan.AllSwitchActions() {
			if action.ID != actionID {
				continue
			}
			if action.State != domain.SwitchActionScheduled {
				return
			}
			s.execute(consumer, action, time.Now())
			s.reevaluate(consumer)
			return
		}
	})
}

// execute invokes the gateway and records the outcome unconditionally: the
// action is considered executed whether the gateway call succeeded or not,
// since it represents an attempt on the wall clock rather than a guarantee
// of physical effect. Retry is not in scope.
func (s *Scheduler) execute(consumer *domain.PowerConsumer, action *domain.SwitchAction, now time.Time) {
	if action.State != domain.SwitchActionScheduled {
		return
	}

	start := time.Now()
	err := s.gateway.SwitchDevice(context.Background(), consumer.GatewayID, action.SwitchOn)
	result := "OK"
	if err != nil {
		result = err.Error()
	}
	action.MarkExecuted(now, result)

	metrics.RecordSwitchAction(err == nil, time.Since(start).Seconds())
	s.log.Info("switch action executed",
		zap.String("device_id", consumer.ID),
		zap.String("plan_id", consumer.CurrentPlan.ID),
		zap.String("action_id", action.ID),
		zap.Bool("switch_on", action.SwitchOn),
		zap.String("result", result),
	)
}

// reevaluate moves a Processing plan to Executed once every action has left
// the Scheduled state, publishing a completion event if configured.
func (s *Scheduler) reevaluate(consumer *domain.PowerConsumer) {
	plan := consumer.CurrentPlan
	if plan == nil || plan.State != domain.ConsumptionPlanProcessing {
		return
	}
	if plan.HasScheduledActions() {
		return
	}

	plan.State = domain.ConsumptionPlanExecuted
	s.log.Info("consumption plan executed", zap.String("device_id", consumer.ID), zap.String("plan_id", plan.ID))

	if err := s.publisher.PublishStats(events.StatsEvent{
		PlanID:              plan.ID,
		PowerConsumerID:     consumer.ID,
		Outcome:             "executed",
		ConsumptionDuration: plan.ConsumptionDuration,
		EmittedAt:           time.Now(),
	}); err != nil {
		s.log.Warn("failed to publish consumption stats", zap.Error(err))
	}
}

// ForceOff issues an unconditional gateway switch-off for the device and
// publishes a completion event with the given outcome. Exported for
// internal/registry's cancellation state machine, which performs the rest
// of §4.6 itself and then calls back into this for the parts that need the
// gateway and publisher this package already owns.
func (s *Scheduler) ForceOff(consumer *domain.PowerConsumer, plan *domain.ConsumptionPlan, outcome string) {
	if err := s.gateway.SwitchDevice(context.Background(), consumer.GatewayID, false); err != nil {
		s.log.Warn("force-off on cancel failed", zap.String("device_id", consumer.ID), zap.Error(err))
	}

	if err := s.publisher.PublishStats(events.StatsEvent{
		PlanID:              plan.ID,
		PowerConsumerID:     consumer.ID,
		Outcome:             outcome,
		ConsumptionDuration: plan.ConsumptionDuration,
		EmittedAt:           time.Now(),
	}); err != nil {
		s.log.Warn("failed to publish consumption stats", zap.Error(err))
	}
}
