package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// executor defines the command surface the REPL dispatches to. The real App
// type satisfies this interface; tests can provide a lightweight stub.
type executor interface {
	isLoggedIn() bool
	register(ctx context.Context)
	login(ctx context.Context)
	logout(ctx context.Context)
	listStock(ctx context.Context)
	addStock(ctx context.Context)
	setStock(ctx context.Context, id string)
	setArchived(ctx context.Context, id string, archived bool)
	listShopping(ctx context.Context)
	addShopping(ctx context.Context)
	setCompleted(ctx context.Context, id string, completed bool)
	removeShopping(ctx context.Context, id string)
	listReceipts(ctx context.Context)
	addReceipt(ctx context.Context)
	deleteReceipt(ctx context.Context, id string)
	syncNow(ctx context.Context)
	queueStatus(ctx context.Context)
	purgeQueue(ctx context.Context)
}

// runREPL starts a read-eval-print loop over the scanner.
//
// It reads a line, parses the first token as the command and the optional
// second token as an entity id, and dispatches to methods on 'a'. Unknown
// commands are reported back to the user. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Command handlers print their own errors; the loop itself never fails.
func runREPL(ctx context.Context, a executor, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "fs> %s > \n", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			printHelp(out, a.isLoggedIn())

		case "register":
			a.register(ctx)

		case "login":
			a.login(ctx)

		case "logout":
			a.logout(ctx)

		case "stock":
			a.listStock(ctx)

		case "addstock":
			a.addStock(ctx)

		case "setstock":
			if arg == "" {
				fmt.Fprintln(out, "Usage: setstock <id>")
				continue
			}
			a.setStock(ctx, arg)

		case "archive":
			if arg == "" {
				fmt.Fprintln(out, "Usage: archive <id>")
				continue
			}
			a.setArchived(ctx, arg, true)

		case "unarchive":
			if arg == "" {
				fmt.Fprintln(out, "Usage: unarchive <id>")
				continue
			}
			a.setArchived(ctx, arg, false)

		case "shopping":
			a.listShopping(ctx)

		case "addshopping":
			a.addShopping(ctx)

		case "done":
			if arg == "" {
				fmt.Fprintln(out, "Usage: done <id>")
				continue
			}
			a.setCompleted(ctx, arg, true)

		case "undone":
			if arg == "" {
				fmt.Fprintln(out, "Usage: undone <id>")
				continue
			}
			a.setCompleted(ctx, arg, false)

		case "remove":
			if arg == "" {
				fmt.Fprintln(out, "Usage: remove <id>")
				continue
			}
			a.removeShopping(ctx, arg)

		case "receipts":
			a.listReceipts(ctx)

		case "addreceipt":
			a.addReceipt(ctx)

		case "delreceipt":
			if arg == "" {
				fmt.Fprintln(out, "Usage: delreceipt <id>")
				continue
			}
			a.deleteReceipt(ctx, arg)

		case "sync":
			a.syncNow(ctx)
			fmt.Fprintln(out, "Sync done")

		case "queue":
			a.queueStatus(ctx)

		case "purge":
			a.purgeQueue(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}

func printHelp(out io.Writer, loggedIn bool) {
	if !loggedIn {
		fmt.Fprintln(out, "Available commands: register, login, exit")
		return
	}
	fmt.Fprintln(out, "Stock:    stock, addstock, setstock <id>, archive <id>, unarchive <id>")
	fmt.Fprintln(out, "Shopping: shopping, addshopping, done <id>, undone <id>, remove <id>")
	fmt.Fprintln(out, "Receipts: receipts, addreceipt, delreceipt <id>")
	fmt.Fprintln(out, "Sync:     sync, queue, purge")
	fmt.Fprintln(out, "Account:  logout, exit")
}
