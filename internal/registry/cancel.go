package registry

import (
	"fmt"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
	"github.com/homepower/switchplanner/internal/scheduler"
)

// cancelPlan implements §4.6: it only applies to a Processing plan. Called
// with the registry's writer lock already held.
func cancelPlan(consumer *domain.PowerConsumer, at time.Time, sched *scheduler.Scheduler) {
	plan := consumer.CurrentPlan
	if plan == nil || plan.State != domain.ConsumptionPlanProcessing {
		return
	}

	actions := plan.AllSwitchActions()
	started := len(actions) > 0 && actions[0].State == domain.SwitchActionExecuted

	for _, action := range actions {
		if action.State == domain.SwitchActionExecuted {
			continue
		}
		if started && !action.SwitchOn {
			result := fmt.Sprintf("Canceled at %s", at.Local().Format("15:04:05"))
			action.MarkExecuted(at, result)
			continue
		}
		action.MarkCanceled()
	}

	if started {
		plan.State = domain.ConsumptionPlanExecuted
	} else {
		plan.State = domain.ConsumptionPlanCanceled
	}

	outcome := "canceled"
	if started {
		outcome = "executed"
	}
	sched.ForceOff(consumer, plan, outcome)
}
