package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zcard/internal/cli"
	"github.com/zarlcorp/zcard/internal/store"
	"github.com/zarlcorp/zcard/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("zcard"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	if len(os.Args) > 1 {
		code := runCLI(ctx, os.Args[1])
		_ = app.Close()
		os.Exit(code)
	}

	if err := runTUI(); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
}

func runCLI(_ context.Context, cmd string) int {
	var err error

	switch cmd {
	case "version":
		fmt.Printf("zcard %s\n", version)
	case "gen":
		err = cli.CmdGen(os.Stdout, os.Args[2:])
	case "check":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: zcard check <number>")
			return 1
		}
		err = cli.CmdCheck(os.Stdout, os.Args[2])
	case "list":
		err = cli.CmdList(os.Stdout, os.Args[2:])
	case "forget":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: zcard forget <id>")
			return 1
		}
		err = cli.CmdForget(os.Stdout, os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "zcard: unknown command %q\n", cmd)
		return 1
	}

	if errors.Is(err, cli.ErrInvalidNumber) {
		// the verdict is already on stdout
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "zcard: %v\n", err)
		return 1
	}
	return 0
}

func runTUI() error {
	dataDir := cli.DataDir()
	firstRun := store.IsFirstRun(dataDir)

	m := tui.New(version, dataDir, firstRun)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	}

	return nil
}
