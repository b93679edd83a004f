package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/DarkerMinecraft/Gravix/config"
	"github.com/DarkerMinecraft/Gravix/logging"
	"github.com/DarkerMinecraft/Gravix/runtime"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to gravix.toml (optional)")
		script      = flag.String("e", "", "Commands to run, separated by ';'")
		wasmFile    = flag.String("wasm", "", "Core wasm module importing the bridge (optional)")
		list        = flag.Bool("list", false, "List registered types and their methods and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if err := run(*configFile, *script, *wasmFile, *list, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, script, wasmFile string, listOnly, interactive bool) error {
	ctx := context.Background()

	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	tui := interactive && script == "" && !listOnly && term.IsTerminal(int(os.Stdin.Fd()))

	// The TUI owns the screen, so its logs go to the history pane.
	var (
		logger *zap.Logger
		sink   *logSink
		err    error
	)
	if tui {
		sink = &logSink{}
		logger, err = logging.NewWriter(cfg.Log, sink)
	} else {
		logger, err = logging.New(cfg.Log)
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	rt, err := runtime.New(cfg, runtime.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	if err := rt.LoadScene(); err != nil {
		logger.Warn("scene loaded with errors", zap.Error(err))
	}

	if wasmFile != "" {
		data, err := os.ReadFile(wasmFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(wasmFile), filepath.Ext(wasmFile))
		if _, err := rt.LoadWASM(ctx, name, data); err != nil {
			return fmt.Errorf("load wasm: %w", err)
		}
	}

	c := newConsole(rt)

	switch {
	case listOnly:
		return listTypes(os.Stdout, c)
	case script != "":
		return runBatch(os.Stdout, c, strings.Split(script, ";"))
	case tui:
		return runInteractive(c, configFile, sink)
	default:
		return runBatch(os.Stdout, c, readLines(os.Stdin))
	}
}

func listTypes(w io.Writer, c *console) error {
	for _, name := range c.rt.Bridge().Registry().Names() {
		fmt.Fprintf(w, "%s\n", name)
		out, err := c.Exec("methods " + name)
		if err != nil {
			return err
		}
		for _, sig := range strings.Split(out, "\n") {
			if sig != "" {
				fmt.Fprintf(w, "  %s\n", sig)
			}
		}
	}
	return nil
}

// runBatch executes every line, printing output and errors, and reports
// whether any command failed.
func runBatch(w io.Writer, c *console, lines []string) error {
	failed := 0
	for _, line := range lines {
		out, err := c.Exec(line)
		if err != nil {
			failed++
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d command(s) failed", failed)
	}
	return nil
}

func readLines(r io.Reader) []string {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
