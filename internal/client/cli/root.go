package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	identity, ok := a.sessions.Current()
	if !ok {
		return ""
	}
	s := identity.Username
	if identity.Role != "" {
		s = s + " " + identity.Role
	}
	return fmt.Sprintf("(%s)", strings.TrimSpace(s))
}

// Root runs the read-eval-print loop. Command handlers report their own
// failures to the user; the loop only dispatches. It exits on EOF or on
// "exit"/"quit".
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "CyberMorph CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "morph %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: scan <file>, stats, users, scans, alerts, whoami, watch <dir>, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			a.Whoami()
		case "scan":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: scan <file>")
				continue
			}
			_ = a.Scan(ctx, args[0])
		case "stats":
			_ = a.Stats(ctx)
		case "users":
			_ = a.Users(ctx)
		case "scans":
			_ = a.Scans(ctx)
		case "alerts":
			_ = a.Alerts(ctx)
		case "watch":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: watch <dir>")
				continue
			}
			_ = a.Watch(ctx, args[0])
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
