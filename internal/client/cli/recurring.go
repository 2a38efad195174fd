package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

var frequencies = []string{"daily", "weekly", "monthly", "yearly"}

func (a *App) Recurring(ctx context.Context) error {
	l, err := a.recurring.List(ctx)
	if err != nil {
		return err
	}
	printRecurring(a.out, l)
	return nil
}

func (a *App) AddRecurring(ctx context.Context) error {
	var (
		r   models.NewRecurring
		err error
	)
	if r.Currency, err = a.askCurrency(a.baseCurrency(ctx)); err != nil {
		return err
	}
	if r.Amount, err = a.askAmount("Amount", r.Currency); err != nil {
		return err
	}
	if r.Description, err = a.askRequired("Description"); err != nil {
		return err
	}
	if r.Category, err = a.askChoice("Category", "Other", categories); err != nil {
		return err
	}
	if r.Frequency, err = a.askChoice("Frequency", "monthly", frequencies); err != nil {
		return err
	}
	if r.NextDueDate, err = a.askDate("Next due date", time.Now().AddDate(0, 1, 0).Format(time.DateOnly)); err != nil {
		return err
	}

	rec, err := a.recurring.Create(ctx, r)
	if err != nil {
		return err
	}
	if rec.IsLocal() {
		fmt.Fprintln(a.out, "Saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Added recurring #%d, next due %s\n", rec.Value.ID, rec.Value.NextDue())
	return nil
}

func (a *App) DelRecurring(ctx context.Context, args []string) error {
	id, err := parseID(args, "delrecurring <id>")
	if err != nil {
		return err
	}
	offline, err := a.recurring.Delete(ctx, id)
	if err != nil {
		return err
	}
	if offline {
		fmt.Fprintln(a.out, "Delete saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Stopped recurring #%d\n", id)
	return nil
}
