package cli

import (
	"context"
	"fmt"
)

func (a *App) queueStatus(ctx context.Context) {
	n, err := a.queue.PendingCount(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	switch n {
	case 0:
		fmt.Fprintln(a.out, "Queue is empty")
	case 1:
		fmt.Fprintln(a.out, "1 pending operation")
	default:
		fmt.Fprintf(a.out, "%d pending operations\n", n)
	}
}

func (a *App) purgeQueue(ctx context.Context) {
	if err := a.queue.PurgeExhausted(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Purged exhausted records")
}
