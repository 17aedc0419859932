package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/aerofood/backend/internal/domain/order"
	"github.com/aerofood/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchUpdateStatus applies one transition across a set of orders.
//
// The batch is all-or-nothing at validation time: if any order's current
// status does not allow the target as a single-step transition, the whole
// batch is rejected before anything is written. Application is per-order
// and isolated; one order's persistence or dispatch failure never blocks
// or reverses the others, and the caller gets an explicit succeeded/failed
// split to present partial success.
func (s *OrderService) BatchUpdateStatus(ctx context.Context, req BatchUpdateStatusRequest) (*BatchResult, error) {
	target := order.Status(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Unknown order status "+req.Status)
	}
	if len(req.OrderIDs) == 0 {
		return nil, shared.ErrInvalidInput
	}

	loaded := make([]*order.Order, len(req.OrderIDs))
	for i, id := range req.OrderIDs {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		loaded[i] = o
	}

	// Every order must share the transition before anything mutates;
	// mixed-state application across unrelated orders is worse than a
	// rejected batch.
	for _, o := range loaded {
		if !o.Status.CanTransitionTo(target) {
			return nil, shared.NewDomainError("NO_COMMON_TRANSITION",
				fmt.Sprintf("Order %s is %s and cannot transition to %s", o.OrderNumber, o.Status, target))
		}
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	g := new(errgroup.Group)
	for i := range loaded {
		o := loaded[i]
		g.Go(func() error {
			err := s.applyOne(ctx, o, target, req.Note, req.SendNotification)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BatchFailure{OrderID: o.ID, Reason: err.Error()})
				return nil
			}
			result.Succeeded = append(result.Succeeded, o.ID)
			return nil
		})
	}
	// Worker closures report per-order failures through the result; the
	// group only synchronizes completion.
	_ = g.Wait()

	s.logger.Info("Batch status update applied",
		zap.String("status", target.String()),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return &result, nil
}

func (s *OrderService) applyOne(ctx context.Context, o *order.Order, target order.Status, note string, dispatch bool) error {
	if err := o.TransitionTo(target, note); err != nil {
		return err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return err
	}
	if dispatch && s.notifier.Dispatch(ctx, o, target, note) {
		if err := s.orderRepo.Save(ctx, o); err != nil {
			s.logger.Warn("Failed to persist dispatch audit note",
				zap.String("order_number", o.OrderNumber), zap.Error(err))
		}
	}
	return nil
}
