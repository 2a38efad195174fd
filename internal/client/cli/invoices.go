package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/currency"
)

func (a *App) Invoices(ctx context.Context) error {
	l, err := a.invoices.List(ctx)
	if err != nil {
		return err
	}
	printInvoices(a.out, l)
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w, usage: upload <path>", errUsage)
	}
	rec, err := a.invoices.Upload(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if rec.IsLocal() {
		fmt.Fprintln(a.out, "Upload saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Uploaded invoice #%d (%s), run 'process %d' to extract the expense\n", rec.Value.ID, rec.Value.FileName, rec.Value.ID)
	return nil
}

func (a *App) Process(ctx context.Context, args []string) error {
	id, err := parseID(args, "process <id>")
	if err != nil {
		return err
	}
	res, err := a.invoices.Process(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Fprintln(a.out, "Processing queued, will run when the server is reachable")
		return nil
	}
	if res.Data == nil {
		fmt.Fprintln(a.out, "Nothing could be read from the invoice")
		return nil
	}

	d := res.Data
	code := d.Currency
	if code == "" {
		code = currency.DefaultCode
	}
	fmt.Fprintf(a.out, "Read: %s, %s, %s (%s)\n", d.Description, currency.FormatAmount(d.Amount, code), d.Date, d.Category)
	if res.Expense != nil {
		fmt.Fprintf(a.out, "Created transaction #%d\n", res.Expense.ID)
	}
	return nil
}
