package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error

	Recurring(ctx context.Context) error
	AddRecurring(ctx context.Context) error
	DelRecurring(ctx context.Context, args []string) error

	Invoices(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Process(ctx context.Context, args []string) error

	Settings(ctx context.Context) error
	Currency(ctx context.Context, args []string) error

	Sync(ctx context.Context) error
	Queue(ctx context.Context) error
	Failed(ctx context.Context) error
	Retry(ctx context.Context, args []string) error
	Discard(ctx context.Context, args []string) error
}

const (
	helpGuest = "Available commands: register, login, help, exit"
	helpUser  = `Available commands:
  list [category=X] [from=YYYY-MM-DD] [to=YYYY-MM-DD]
  add, edit <id>, delete <id>, stats
  recurring, addrecurring, delrecurring <id>
  invoices, upload <path>, process <id>
  settings, currency <CODE>
  sync, queue, failed, retry <id>, discard <id>
  whoami, logout, help, exit`
)

// guestCommands may run without a session.
var guestCommands = map[string]bool{"register": true, "login": true, "help": true, "exit": true, "quit": true}

// runREPL starts a simple read–eval–print loop for the fintrack CLI.
//
// It reads a line, parses the first token as the command and dispatches to
// methods on 'a'. Errors from handlers are printed and the loop continues.
// The loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ft %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		var cmdErr error

		if !guestCommands[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "add":
			cmdErr = a.Add(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)
		case "recurring":
			cmdErr = a.Recurring(ctx)
		case "addrecurring":
			cmdErr = a.AddRecurring(ctx)
		case "delrecurring":
			cmdErr = a.DelRecurring(ctx, args)
		case "invoices":
			cmdErr = a.Invoices(ctx)
		case "upload":
			cmdErr = a.Upload(ctx, args)
		case "process":
			cmdErr = a.Process(ctx, args)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "currency":
			cmdErr = a.Currency(ctx, args)
		case "sync":
			cmdErr = a.Sync(ctx)
		case "queue":
			cmdErr = a.Queue(ctx)
		case "failed":
			cmdErr = a.Failed(ctx)
		case "retry":
			cmdErr = a.Retry(ctx, args)
		case "discard":
			cmdErr = a.Discard(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}
