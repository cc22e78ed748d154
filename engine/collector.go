package engine

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forgelabs/actorcore/actor"
	"github.com/forgelabs/actorcore/pkg/logger"
)

// CollectedOutput is the Collector's result: per-dimension contribution and
// cap-contribution lists, ordering preserved as subsystems emitted them.
type CollectedOutput struct {
	Contribs map[string][]actor.Contribution
	Caps     map[string][]actor.CapContribution
	// Systems is the set of source systems that contributed (successfully)
	// to this collection, carried through to the final Snapshot.
	Systems map[string]struct{}
}

// Collector invokes subsystems in registry order to gather contributions for
// one actor. Calls are strictly sequential: ordering is a correctness
// requirement, not a convenience, because later subsystems may rely on
// reduction order within a dimension matching registry order.
type Collector struct {
	log               *logger.Logger
	metrics           Metrics
	subsystemDeadline time.Duration
}

// NewCollector builds a Collector. deadline is the per-subsystem call budget
// (spec default: 100ms); zero disables the deadline.
func NewCollector(log *logger.Logger, metrics Metrics, deadline time.Duration) *Collector {
	return &Collector{log: log, metrics: metrics, subsystemDeadline: deadline}
}

// Collect iterates subsystems in the order given and calls Contribute on
// each sequentially. A subsystem whose call errors or exceeds its deadline
// is skipped after its failure is recorded; collection never short-circuits
// on a recoverable subsystem error. A non-finite contribution value is fatal
// for the whole collection (ErrInvalidContribution).
func (c *Collector) Collect(ctx context.Context, a *actor.Actor, ordered []actor.Subsystem) (*CollectedOutput, error) {
	out := &CollectedOutput{
		Contribs: make(map[string][]actor.Contribution),
		Caps:     make(map[string][]actor.CapContribution),
		Systems:  make(map[string]struct{}),
	}

	for _, s := range ordered {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if c.subsystemDeadline > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.subsystemDeadline)
		}
		output, err := s.Contribute(callCtx, a)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			if callCtx.Err() == context.DeadlineExceeded {
				c.recordTimeout(s.SystemID())
			} else {
				c.recordFailure(s.SystemID(), err)
			}
			continue
		}
		if callCtx.Err() == context.DeadlineExceeded {
			c.recordTimeout(s.SystemID())
			continue
		}

		for _, contrib := range output.Contributions {
			if !isFinite(contrib.Value) {
				return nil, newInvalidContribution(s.SystemID(), contrib.Dimension)
			}
			out.Contribs[contrib.Dimension] = append(out.Contribs[contrib.Dimension], contrib)
		}
		for _, cap := range output.Caps {
			if !isFinite(cap.Value) {
				return nil, newInvalidContribution(s.SystemID(), cap.Dimension)
			}
			out.Caps[cap.Dimension] = append(out.Caps[cap.Dimension], cap)
		}
		out.Systems[s.SystemID()] = struct{}{}
	}

	return out, nil
}

func (c *Collector) recordFailure(systemID string, cause error) {
	if c.log != nil {
		c.log.WithFields(logrus.Fields{"system_id": systemID, "error": cause}).Warn("subsystem.failed")
	}
	if c.metrics != nil {
		c.metrics.Counter("subsystem_failed_total", map[string]string{"system_id": systemID}, 1)
	}
}

func (c *Collector) recordTimeout(systemID string) {
	if c.log != nil {
		c.log.WithFields(logrus.Fields{"system_id": systemID}).Warn("subsystem.timeout")
	}
	if c.metrics != nil {
		c.metrics.Counter("subsystem_timeout_total", map[string]string{"system_id": systemID}, 1)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
