package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/invoices"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/recurring"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/settings"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// constructor serves both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Settings(db dbx.DBTX) settings.Repository
	Expenses(db dbx.DBTX) expenses.Repository
	Recurring(db dbx.DBTX) recurring.Repository
	Invoices(db dbx.DBTX) invoices.Repository
}
