package cli

import (
	"context"
	"fmt"
)

// Sync replays the user's queue now.
func (a *App) Sync(ctx context.Context) error {
	uid, err := a.userID()
	if err != nil {
		return err
	}
	rep, err := a.sync(ctx, uid)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Sync:", formatReport(rep))
	return nil
}

// Queue lists the changes waiting to sync.
func (a *App) Queue(ctx context.Context) error {
	uid, err := a.userID()
	if err != nil {
		return err
	}
	muts, err := a.queue.Pending(ctx, uid)
	if err != nil {
		return err
	}
	if len(muts) == 0 {
		fmt.Fprintln(a.out, "Nothing to sync")
		return nil
	}
	printMutations(a.out, muts)
	return nil
}

// Failed lists changes the server kept rejecting.
func (a *App) Failed(ctx context.Context) error {
	uid, err := a.userID()
	if err != nil {
		return err
	}
	muts, err := a.queue.Abandoned(ctx, uid)
	if err != nil {
		return err
	}
	if len(muts) == 0 {
		fmt.Fprintln(a.out, "No failed changes")
		return nil
	}
	printMutations(a.out, muts)
	fmt.Fprintln(a.out, "Use 'retry <id>' to queue again or 'discard <id>' to drop")
	return nil
}

func (a *App) Retry(ctx context.Context, args []string) error {
	uid, err := a.userID()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w, usage: retry <id>", errUsage)
	}
	if err := a.queue.Retry(ctx, uid, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Queued again")
	return nil
}

func (a *App) Discard(ctx context.Context, args []string) error {
	uid, err := a.userID()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w, usage: discard <id>", errUsage)
	}
	if err := a.queue.Discard(ctx, uid, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Discarded")
	return nil
}
