package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/animaltrack/internal/client/editor"
	"github.com/atinyakov/animaltrack/internal/client/nav"
)

const shellHelp = `Login screen:   login <e-mail> <password>
List screen:    list, filter [text], open <id>, delete <fid>, logout
Animal screen:  name <value>, status <value>, save, back
Anywhere:       help, exit`

func newShellCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := ro.newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()
			sh := &shell{rt: rt}
			return sh.repl(cmd.Context(), bufio.NewScanner(cmd.InOrStdin()))
		},
	}
}

// shell runs the interactive loop. The active screen comes from the
// navigation stack; ed is the open editor while on the Animal screen.
type shell struct {
	rt *runtime
	ed *editor.Editor
}

func (sh *shell) screen() nav.Screen {
	s, _ := sh.rt.stack.Current()
	return s
}

func (sh *shell) prompt() {
	fmt.Fprintf(sh.rt.out, "animaltrack:%s> ", sh.screen())
}

func (sh *shell) repl(ctx context.Context, scanner *bufio.Scanner) error {
	if sh.rt.app.Start(ctx) {
		sh.focus(ctx)
	}

	for {
		sh.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(sh.rt.out, "Bye")
			return nil
		}
		if args[0] == "help" {
			fmt.Fprintln(sh.rt.out, shellHelp)
			continue
		}

		switch sh.screen() {
		case nav.Login:
			sh.onLogin(ctx, args)
		case nav.AnimalsList:
			sh.onList(ctx, args, line)
		case nav.Animal:
			sh.onAnimal(ctx, args, line)
		}
	}
}

// focus is the "list became visible" event.
func (sh *shell) focus(ctx context.Context) {
	_ = sh.rt.app.List.Focus(ctx)
	printAnimals(sh.rt.out, sh.rt.app.List)
}

func (sh *shell) onLogin(ctx context.Context, args []string) {
	if args[0] != "login" || len(args) != 3 {
		fmt.Fprintln(sh.rt.out, "Usage: login <e-mail> <password>")
		return
	}
	if err := sh.rt.app.Login(ctx, args[1], args[2]); err != nil {
		return
	}
	sh.focus(ctx)
}

func (sh *shell) onList(ctx context.Context, args []string, line string) {
	switch args[0] {
	case "list":
		sh.focus(ctx)
	case "filter":
		sh.rt.app.List.SetFilter(strings.TrimSpace(strings.TrimPrefix(line, "filter")))
		printAnimals(sh.rt.out, sh.rt.app.List)
	case "open":
		if len(args) < 2 {
			fmt.Fprintln(sh.rt.out, "Usage: open <id>")
			return
		}
		a, ok := sh.rt.app.List.Find(args[1])
		if !ok {
			fmt.Fprintln(sh.rt.out, "Animal not found")
			return
		}
		sh.ed = sh.rt.app.Open(a)
		printAnimal(sh.rt.out, a)
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(sh.rt.out, "Usage: delete <fid>")
			return
		}
		if err := sh.rt.app.List.Delete(ctx, args[1]); err == nil {
			fmt.Fprintln(sh.rt.out, "Animal deleted")
		}
		printAnimals(sh.rt.out, sh.rt.app.List)
	case "logout":
		if err := sh.rt.app.Logout(ctx, false); err == nil {
			fmt.Fprintln(sh.rt.out, "Logged out")
		}
	default:
		fmt.Fprintln(sh.rt.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (sh *shell) onAnimal(ctx context.Context, args []string, line string) {
	switch args[0] {
	case "name":
		sh.ed.SetName(strings.TrimSpace(strings.TrimPrefix(line, "name")))
	case "status":
		sh.ed.SetStatus(strings.TrimSpace(strings.TrimPrefix(line, "status")))
	case "save":
		if err := sh.ed.Submit(ctx); err != nil {
			return
		}
		sh.ed = nil
		fmt.Fprintln(sh.rt.out, "Animal updated")
		sh.focus(ctx)
	case "back":
		sh.ed = nil
		sh.rt.stack.Back()
		sh.focus(ctx)
	default:
		fmt.Fprintln(sh.rt.out, "Unknown command. Type 'help' for a list of commands.")
	}
}
