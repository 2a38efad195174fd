package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

var (
	categories = []string{"Food", "Transport", "Housing", "Utilities", "Entertainment", "Health", "Other"}
	errUsage   = errors.New("invalid arguments")
)

// baseCurrency returns the user's base currency, USD when unknown.
func (a *App) baseCurrency(ctx context.Context) string {
	s, _, err := a.settings.Get(ctx)
	if err != nil || s.BaseCurrency == "" {
		return currency.DefaultCode
	}
	return s.BaseCurrency
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w, usage: %s", errUsage, usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a server id", errUsage, args[0])
	}
	return id, nil
}

// parseFilter reads key=value list arguments.
func parseFilter(args []string) (models.ExpenseFilter, error) {
	var f models.ExpenseFilter
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return f, fmt.Errorf("%w: %q, expected key=value", errUsage, arg)
		}
		switch k {
		case "category":
			f.Category = v
		case "from":
			if _, err := timex.ParseDate(v); err != nil {
				return f, fmt.Errorf("%w: bad date %q", errUsage, v)
			}
			f.Start = v
		case "to":
			if _, err := timex.ParseDate(v); err != nil {
				return f, fmt.Errorf("%w: bad date %q", errUsage, v)
			}
			f.End = v
		default:
			return f, fmt.Errorf("%w: unknown filter %q", errUsage, k)
		}
	}
	return f, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	l, err := a.expenses.List(ctx, f)
	if err != nil {
		return err
	}
	printExpenses(a.out, l, a.baseCurrency(ctx))
	return nil
}

func (a *App) askAmount(prompt, code string) (int64, error) {
	for {
		raw, err := a.askRequired(fmt.Sprintf("%s in %s", prompt, code))
		if err != nil {
			return 0, err
		}
		minor, err := currency.ToMinor(raw, code)
		if err == nil && minor > 0 {
			return minor, nil
		}
		fmt.Fprintln(a.out, "Enter a positive amount, e.g. 12.50")
	}
}

func (a *App) askCurrency(def string) (string, error) {
	for {
		code, err := a.ask("Currency", def)
		if err != nil {
			return "", err
		}
		code = strings.ToUpper(code)
		if currency.Supported(code) {
			return code, nil
		}
		fmt.Fprintf(a.out, "Unsupported currency %s\n", code)
	}
}

func (a *App) askChoice(prompt, def string, choices []string) (string, error) {
	for {
		v, err := a.ask(fmt.Sprintf("%s (%s)", prompt, strings.Join(choices, ", ")), def)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if strings.EqualFold(c, v) {
				return c, nil
			}
		}
		fmt.Fprintf(a.out, "Choose one of: %s\n", strings.Join(choices, ", "))
	}
}

func (a *App) askDate(prompt, def string) (string, error) {
	for {
		v, err := a.ask(prompt, def)
		if err != nil {
			return "", err
		}
		if _, err := timex.ParseDate(v); err == nil {
			return v, nil
		}
		fmt.Fprintln(a.out, "Enter a date as YYYY-MM-DD")
	}
}

// Add prompts for a transaction and creates it.
func (a *App) Add(ctx context.Context) error {
	var (
		e   models.NewExpense
		err error
	)
	if e.Type, err = a.askChoice("Type", "expense", []string{"expense", "income"}); err != nil {
		return err
	}
	if e.Currency, err = a.askCurrency(a.baseCurrency(ctx)); err != nil {
		return err
	}
	if e.Amount, err = a.askAmount("Amount", e.Currency); err != nil {
		return err
	}
	if e.Description, err = a.askRequired("Description"); err != nil {
		return err
	}
	if e.Category, err = a.askChoice("Category", "Other", categories); err != nil {
		return err
	}
	if e.Date, err = a.askDate("Date", time.Now().Format(time.DateOnly)); err != nil {
		return err
	}

	rec, err := a.expenses.Create(ctx, e)
	if err != nil {
		return err
	}
	if rec.IsLocal() {
		fmt.Fprintln(a.out, "Saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Added #%d: %s\n", rec.Value.ID, expenseAmount(rec.Value, rec.State, a.baseCurrency(ctx)))
	return nil
}

// Edit prompts for the fields to change; empty answers keep the stored value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}

	var p models.ExpensePatch
	code, err := a.ask("New currency (empty to keep)", "")
	if err != nil {
		return err
	}
	if code != "" {
		code = strings.ToUpper(code)
		if !currency.Supported(code) {
			return fmt.Errorf("unsupported currency %s", code)
		}
		p.Currency = &code
	}

	amountCode := code
	if amountCode == "" {
		amountCode = a.baseCurrency(ctx)
	}
	raw, err := a.ask(fmt.Sprintf("New amount in %s (empty to keep)", amountCode), "")
	if err != nil {
		return err
	}
	if raw != "" {
		minor, err := currency.ToMinor(raw, amountCode)
		if err != nil || minor <= 0 {
			return fmt.Errorf("invalid amount %q", raw)
		}
		p.Amount = &minor
	}

	for _, f := range []struct {
		prompt string
		dst    **string
	}{
		{"New description (empty to keep)", &p.Description},
		{"New category (empty to keep)", &p.Category},
		{"New date YYYY-MM-DD (empty to keep)", &p.Date},
	} {
		v, err := a.ask(f.prompt, "")
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}
	if p.Date != nil {
		if _, err := timex.ParseDate(*p.Date); err != nil {
			return fmt.Errorf("invalid date %q", *p.Date)
		}
	}

	e, offline, err := a.expenses.Update(ctx, id, p)
	if err != nil {
		return err
	}
	if offline {
		fmt.Fprintln(a.out, "Change saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Updated #%d\n", e.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	offline, err := a.expenses.Delete(ctx, id)
	if err != nil {
		return err
	}
	if offline {
		fmt.Fprintln(a.out, "Delete saved offline, will sync when the server is reachable")
		return nil
	}
	fmt.Fprintf(a.out, "Deleted #%d\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, stale, err := a.expenses.Stats(ctx)
	if err != nil {
		return err
	}
	base := a.baseCurrency(ctx)
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Total income\t%s\n", currency.FormatAmount(s.TotalIncome, base))
	fmt.Fprintf(tw, "Total expense\t%s\n", currency.FormatAmount(s.TotalExpense, base))
	fmt.Fprintf(tw, "Balance\t%s\n", currency.FormatAmount(s.Balance, base))
	fmt.Fprintf(tw, "Income this month\t%s\n", currency.FormatAmount(s.MonthlyIncome, base))
	_ = tw.Flush()
	printStale(a.out, stale)
	return nil
}
