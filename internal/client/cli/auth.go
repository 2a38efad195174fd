package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

// Register prompts for a username and password and creates the account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := a.askRequired("Enter username")
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Register(ctx, userName, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s, you can login now\n", u.Username)
	return nil
}

// Login authenticates with the username from args, or prompts for one
// offering the last used name.
func (a *App) Login(ctx context.Context, args []string) error {
	var userName string
	if len(args) > 0 {
		userName = args[0]
	} else {
		last, err := a.auth.LastUsername(ctx)
		if err != nil {
			a.logger.Warn(ctx, "cannot read last username", "error", err)
		}
		if userName, err = a.ask("Enter username", last); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)

	if n, err := a.queue.Pending(ctx, u.ID); err == nil && len(n) > 0 {
		fmt.Fprintf(a.out, "%d change(s) waiting to sync\n", len(n))
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.auth.WhoAmI(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", u.Username, u.ID)
	return nil
}
