package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/currency"
)

func (a *App) Settings(ctx context.Context) error {
	s, stale, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Base currency: %s\n", s.BaseCurrency)
	printStale(a.out, stale)

	tw := newTable(a.out)
	fmt.Fprintln(tw, "CODE\tSYMBOL\tDECIMALS")
	for _, c := range currency.All() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Code, c.Symbol, c.Decimals)
	}
	return tw.Flush()
}

// Currency sets the base currency new transactions are converted to.
func (a *App) Currency(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w, usage: currency <CODE>", errUsage)
	}
	code := strings.ToUpper(args[0])
	if !currency.Supported(code) {
		return fmt.Errorf("unsupported currency %s", code)
	}
	_, offline, err := a.settings.SetBaseCurrency(ctx, code)
	if err != nil {
		return err
	}
	if offline {
		fmt.Fprintf(a.out, "Base currency set to %s offline, will sync when the server is reachable\n", code)
		return nil
	}
	fmt.Fprintf(a.out, "Base currency set to %s\n", code)
	return nil
}
