package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/domain"
	"github.com/homepower/switchplanner/internal/events"
	"github.com/homepower/switchplanner/internal/priceprovider"
	"github.com/homepower/switchplanner/internal/scheduler"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSwitcher is a method-based fake that records every switch call it
// receives.
type fakeSwitcher struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSwitcher) SwitchDevice(_ context.Context, entityID string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	action := "off"
	if on {
		action = "on"
	}
	f.calls = append(f.calls, entityID+":"+action)
	return f.err
}

func (f *fakeSwitcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeDaySource returns an hourly price list where every cell overlapping
// [now, now+65m) is expensive and everything else is cheap, so the planner
// never picks a slot that could fire inline within the epsilon window -
// letting cancellation-before-execution tests run deterministically
// regardless of wall-clock time.
type fakeDaySource struct {
	avoidFrom time.Time
	avoidTo   time.Time
}

func newFakeDaySource(now time.Time) fakeDaySource {
	return fakeDaySource{avoidFrom: now, avoidTo: now.Add(65 * time.Minute)}
}

func (f fakeDaySource) GetPriceList(_ context.Context, forDay time.Time) ([]domain.PriceListItem, error) {
	day := priceprovider.CutOff(forDay)
	items := make([]domain.PriceListItem, 0, 24)
	for h := 0; h < 24; h++ {
		start := day.Add(time.Duration(h) * time.Hour)
		end := start.Add(time.Hour)
		price := int32(80000)
		if end.After(f.avoidFrom) && start.Before(f.avoidTo) {
			price = 900000
		}
		items = append(items, domain.PriceListItem{
			StartsAt: start,
			Duration: time.Hour,
			Price:    price,
			Category: domain.CategorizePrice(price),
		})
	}
	return items, nil
}

func newTestRegistry(t *testing.T, sw *fakeSwitcher) (*Registry, *fakeSwitcher) {
	t.Helper()
	if sw == nil {
		sw = &fakeSwitcher{}
	}
	assembler := priceprovider.NewAssembler(newFakeDaySource(time.Now()))
	sched := scheduler.New(sw, events.NewNoop(), zap.NewNop())
	reg := New([]Entry{
		{ID: "kettle", Name: "Kettle", GatewayID: "switch.kettle"},
	}, assembler, sched, zap.NewNop())
	return reg, sw
}

func TestSchedule_UnknownDeviceIsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Schedule(context.Background(), "missing", 30*time.Minute, time.Now().Add(2*time.Hour))
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.True(t, appErr.NotFound)
}

func TestSchedule_RejectsSecondProcessingPlan(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	finishAt := time.Now().Add(3 * time.Hour)

	_, err := reg.Schedule(context.Background(), "kettle", 30*time.Minute, finishAt)
	require.NoError(t, err)

	_, err = reg.Schedule(context.Background(), "kettle", 30*time.Minute, finishAt)
	require.Error(t, err)
	require.True(t, apperr.IsUser(err))
}

func TestSchedule_InlineActionExecutesImmediately(t *testing.T) {
	reg, sw := newTestRegistry(t, nil)

	model, err := reg.Schedule(context.Background(), "kettle", 30*time.Minute, time.Now().Add(30*time.Minute+10*time.Second))
	require.NoError(t, err)
	require.NotNil(t, model.ConsumptionPlan)

	require.Eventually(t, func() bool { return sw.callCount() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestCancel_UnknownDeviceIsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	_, err := reg.Cancel(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, apperr.IsUser(err))
}

func TestCancel_BeforeExecution_MarksPlanAndActionsCanceled(t *testing.T) {
	reg, sw := newTestRegistry(t, nil)

	// finishAt far enough out that nothing executes inline.
	finishAt := time.Now().Add(4 * time.Hour)
	_, err := reg.Schedule(context.Background(), "kettle", 60*time.Minute, finishAt)
	require.NoError(t, err)

	model, err := reg.Cancel(context.Background(), "kettle")
	require.NoError(t, err)
	require.Equal(t, domain.ConsumptionPlanCanceled, model.ConsumptionPlan.State)

	for _, item := range model.ConsumptionPlan.ConsumptionPlanItems {
		for _, action := range item.SwitchActions {
			require.Equal(t, domain.SwitchActionCanceled, action.State)
		}
	}

	require.Eventually(t, func() bool { return sw.callCount() >= 1 }, time.Second, 5*time.Millisecond)
}
