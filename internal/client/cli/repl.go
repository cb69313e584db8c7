package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Bookings(ctx context.Context) error
	Request(ctx context.Context) error
	Profile(ctx context.Context) error
	Setup(ctx context.Context) error
	Pending(ctx context.Context) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Stats(ctx context.Context) error
	Watch(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it until EOF, "exit" or
// ctx is cancelled. Command errors are reported by the commands themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "teli (%s)> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Commands: bookings, request, profile, setup, pending, approve <id>, reject <id>, stats, watch, logout, exit")
			} else {
				fmt.Fprintln(w, "Commands: login, exit")
			}
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "b", "bookings":
			_ = a.Bookings(ctx)
		case "request":
			_ = a.Request(ctx)
		case "profile":
			_ = a.Profile(ctx)
		case "setup":
			_ = a.Setup(ctx)
		case "pending":
			_ = a.Pending(ctx)
		case "approve":
			_ = a.Approve(ctx, arg)
		case "reject":
			_ = a.Reject(ctx, arg)
		case "stats":
			_ = a.Stats(ctx)
		case "watch":
			_ = a.Watch(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", parts[0])
		}
	}
}
