package ordercleanup

import (
	"context"
	"fmt"
	"time"

	"log/slog"
)

func (w *Worker) worker(ctx context.Context) {
	ticker := time.NewTicker(w.c.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.cancelStuckPendingOrders(ctx); err != nil {
				slog.Default().ErrorContext(ctx, "can't cancel stuck pending orders",
					slog.String("err", err.Error()),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) cancelStuckPendingOrders(ctx context.Context) error {
	olderThan := time.Now().Add(-w.c.PendingThreshold)
	orders, err := w.repo.Order().GetStuckPendingOrders(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("can't get stuck pending orders: %w", err)
	}

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}

		full, err := w.repo.Order().CancelOrder(ctx, order.UUID)
		if err != nil {
			slog.Default().ErrorContext(ctx, "can't cancel stuck pending order",
				slog.String("err", err.Error()),
				slog.String("order_uuid", order.UUID),
				slog.Int("order_id", order.ID),
			)
			continue
		}

		if w.mailer != nil {
			if err := w.mailer.SendOrderCancellation(ctx, w.repo, full.Buyer.Email, full); err != nil {
				slog.Default().ErrorContext(ctx, "can't send cancellation email",
					slog.String("err", err.Error()),
					slog.String("order_uuid", order.UUID),
				)
			}
		}

		slog.Default().InfoContext(ctx, "cancelled stuck pending order",
			slog.String("order_uuid", order.UUID),
			slog.Int("order_id", order.ID),
		)
	}

	return nil
}
