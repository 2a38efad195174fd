package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
	"github.com/dmitrijs2005/fintrack/internal/client/services"
	"github.com/dmitrijs2005/fintrack/internal/client/syncer"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/currency"
)

// describe renders an error for the user.
func describe(err error) string {
	var apiErr *transport.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, transport.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, services.ErrNotLoggedIn):
		return "please login first"
	default:
		return err.Error()
	}
}

func stateLabel(s pending.State) string {
	switch s {
	case pending.Optimistic:
		return "saving"
	case pending.Queued:
		return "pending"
	case pending.Failed:
		return "FAILED"
	default:
		return ""
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// expenseAmount shows the stored amount; converted records also show what
// was entered.
func expenseAmount(e models.Expense, state pending.State, base string) string {
	if state != pending.Confirmed || e.Currency == "" || e.Currency == base {
		code := e.Currency
		if code == "" {
			code = base
		}
		return currency.FormatAmount(e.Amount, code)
	}
	return fmt.Sprintf("%s (%s)", currency.FormatAmount(e.Amount, base), currency.FormatAmount(e.OriginalAmount, e.Currency))
}

func printExpenses(w io.Writer, l services.Listing[models.Expense], base string) {
	if len(l.Records) == 0 {
		fmt.Fprintln(w, "No transactions")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT\tSTATE")
	for _, r := range l.Records {
		e := r.Value
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			displayID(r.State, e.ID, r.Key), e.Day(), e.Type, e.Category, e.Description,
			expenseAmount(e, r.State, base), stateLabel(r.State))
	}
	_ = tw.Flush()
	printStale(w, l.Stale)
}

func printRecurring(w io.Writer, l services.Listing[models.RecurringExpense]) {
	if len(l.Records) == 0 {
		fmt.Fprintln(w, "No recurring expenses")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNEXT DUE\tFREQUENCY\tCATEGORY\tDESCRIPTION\tAMOUNT\tSTATE")
	for _, r := range l.Records {
		v := r.Value
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			displayID(r.State, v.ID, r.Key), v.NextDue(), v.Frequency, v.Category, v.Description,
			currency.FormatAmount(v.Amount, v.Currency), stateLabel(r.State))
	}
	_ = tw.Flush()
	printStale(w, l.Stale)
}

func printInvoices(w io.Writer, l services.Listing[models.Invoice]) {
	if len(l.Records) == 0 {
		fmt.Fprintln(w, "No invoices")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILE\tTYPE\tSTATUS\tSTATE")
	for _, r := range l.Records {
		v := r.Value
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			displayID(r.State, v.ID, r.Key), v.FileName, v.ContentType, v.Status, stateLabel(r.State))
	}
	_ = tw.Flush()
	printStale(w, l.Stale)
}

// displayID shows server ids as numbers and local records by a short queue
// id prefix, since they have no server id yet.
func displayID(s pending.State, id int64, key string) string {
	if s == pending.Confirmed {
		return strconv.FormatInt(id, 10)
	}
	if len(key) > 8 {
		key = key[:8]
	}
	return "~" + key
}

func printStale(w io.Writer, stale bool) {
	if stale {
		fmt.Fprintln(w, "(offline: showing last known data)")
	}
}

func printMutations(w io.Writer, muts []models.QueuedMutation) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tQUEUED\tREQUEST\tATTEMPTS\tLAST ERROR")
	for _, m := range muts {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\n",
			m.ID, m.EnqueuedAt().Local().Format("2006-01-02 15:04:05"), m.Method, m.URL, m.Attempts, m.LastError)
	}
	_ = tw.Flush()
}

func formatReport(r syncer.Report) string {
	return fmt.Sprintf("synced %d, failed %d, abandoned %d, remaining %d", r.Succeeded, r.Failed, r.Abandoned, r.Remaining)
}
