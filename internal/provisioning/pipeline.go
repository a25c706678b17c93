package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes phases sequentially and stops at the first failure.
// Nothing is rolled back.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Running %d phases for cell %s...", len(phases), ctx.Config.Cell.Name)

	for i, phase := range phases {
		if err := runPhase(ctx, phase, i, len(phases)); err != nil {
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}
	}

	ctx.Observer.Printf("Completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// RunSaga executes phases sequentially. When phase i fails, every earlier
// phase that implements Compensator and owns its result is compensated in
// reverse order. Compensation failures are logged and do not stop the
// remaining compensations. The returned error wraps the original failure.
func RunSaga(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Running %d phases for cell %s...", len(phases), ctx.Config.Cell.Name)

	for i, phase := range phases {
		if err := runPhase(ctx, phase, i, len(phases)); err != nil {
			compensate(ctx, phases[:i])
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}
	}

	ctx.Observer.Printf("Completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func runPhase(ctx *Context, phase Phase, i, total int) error {
	phaseStart := time.Now()
	name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, total)

	LogPhaseStart(ctx.Observer, name)
	if err := phase.Provision(ctx); err != nil {
		LogPhaseFailed(ctx.Observer, name, err)
		return err
	}
	LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	return nil
}

func compensate(ctx *Context, done []Phase) {
	for j := len(done) - 1; j >= 0; j-- {
		c, ok := done[j].(Compensator)
		if !ok || !c.Owned() {
			continue
		}
		ctx.Observer.Event(Event{
			Type:    EventCompensating,
			Phase:   done[j].Name(),
			Message: "rolling back",
		})
		if err := c.Compensate(ctx); err != nil {
			ctx.Observer.Event(Event{
				Type:    EventCompensationFailed,
				Phase:   done[j].Name(),
				Message: fmt.Sprintf("rollback failed: %v", err),
			})
		}
	}
}
