package checkout

import (
	"context"
	"log"
	"time"
)

// Reconciler sweeps orders stuck in "pending": rows the pipeline inserted
// before the gateway call and never promoted because the process died or
// the gateway response was lost.
//
// A pending row without a gateway id never reached the gateway (or the
// response was lost before it was recorded); nothing was charged, the row
// is deleted. A pending row with a gateway id is checked against the
// gateway: a paid order is promoted to placed, anything else is marked
// abandoned.
type Reconciler struct {
	Orders  OrderStore
	Gateway Gateway

	// After is how old a pending row must be before it is touched; it must
	// comfortably exceed the longest possible request duration.
	After    time.Duration
	Interval time.Duration
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass.
func (r *Reconciler) Sweep(ctx context.Context) {
	stale, err := r.Orders.StalePending(ctx, time.Now().Add(-r.After))
	if err != nil {
		log.Println("[RECONCILE] [ERROR] listing stale pending orders failed:", err)
		return
	}

	for _, order := range stale {
		if order.GatewayOrderID == "" {
			if err := r.Orders.DeletePending(ctx, order.ID); err != nil {
				log.Println("[RECONCILE] [ERROR] deleting pending order failed:", err)
			} else {
				log.Println("[RECONCILE] [INFO] deleted gateway-less pending order", order.ID.Hex())
			}
			continue
		}

		gw, err := r.Gateway.FetchOrder(ctx, order.GatewayOrderID)
		if err != nil {
			// Gateway unreachable; leave the row for the next pass.
			log.Println("[RECONCILE] [ERROR] gateway fetch failed for", order.GatewayOrderID, ":", err)
			continue
		}

		if gw.Status == GatewayStatusPaid {
			if err := r.Orders.MarkPlaced(ctx, order.ID); err != nil {
				log.Println("[RECONCILE] [ERROR] promoting order failed:", err)
			} else {
				log.Println("[RECONCILE] [INFO] promoted paid order", order.ID.Hex())
			}
			continue
		}

		if err := r.Orders.MarkAbandoned(ctx, order.ID); err != nil {
			log.Println("[RECONCILE] [ERROR] abandoning order failed:", err)
		} else {
			log.Println("[RECONCILE] [INFO] abandoned unpaid order", order.ID.Hex())
		}
	}
}
