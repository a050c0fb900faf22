package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/rybkr/mvcs/internal/cli"
	"github.com/rybkr/mvcs/internal/gitcore"
)

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// getEnv returns the environment variable named key, or fallback if unset
// or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// newLogger builds the structured logger. noColor forces the JSON handler
// even on a terminal — this CLI never emits ANSI codes either way, but the
// text handler's layout is meant for an interactive terminal, so NO_COLOR
// steers it toward the same plain, script-friendly output a piped invocation
// already gets.
func newLogger(noColor bool) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if !noColor && isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// noColorRequested reports whether color output should be suppressed, per
// the NO_COLOR convention (https://no-color.org/): any presence of the
// variable disables color, regardless of its value.
func noColorRequested(gf globalFlags) bool {
	if gf.noColor {
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// applyEnvOverrides layers MVCS_AUTHOR/MVCS_AUTHOR_EMAIL onto the repo's
// in-memory config, matching the corpus's getEnv-driven configuration
// pattern. The overrides are never persisted back to the config file.
func applyEnvOverrides(repo *gitcore.Repository) {
	if name := os.Getenv("MVCS_AUTHOR"); name != "" {
		repo.Config.Set("username", name)
	}
	if email := os.Getenv("MVCS_AUTHOR_EMAIL"); email != "" {
		repo.Config.Set("email", email)
	}
}

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])

	// --version is handled before app.Run because "--version" would
	// otherwise be treated as an unknown command by the dispatcher.
	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	repoDirName := getEnv("MVCS_DIR", gitcore.DefaultRepoDirName)
	if gf.repoDirName != "" {
		repoDirName = gf.repoDirName
	}

	logger := newLogger(noColorRequested(gf))

	app := cli.NewApp("mvcs", version)
	app.Stderr = os.Stderr

	// repo is declared here and assigned after dispatch determines that
	// the matched command needs it (NeedsRepo). Closures capture the
	// pointer variable, which is populated before they execute.
	var repo *gitcore.Repository

	app.Register(&cli.Command{
		Name:      "init",
		Summary:   "Create an empty repository",
		Usage:     "mvcs init",
		NeedsRepo: false,
		Run:       func(args []string) int { return runInit(repoDirName, logger, args) },
	})

	app.Register(&cli.Command{
		Name:      "add",
		Summary:   "Stage files",
		Usage:     "mvcs add <path>...",
		Examples:  []string{"mvcs add main.go", "mvcs add ."},
		NeedsRepo: true,
		Run:       func(args []string) int { return runAdd(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "rm",
		Summary:   "Unstage files",
		Usage:     "mvcs rm <path>...",
		NeedsRepo: true,
		Run:       func(args []string) int { return runRm(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "commit",
		Summary:   "Record staged changes",
		Usage:     "mvcs commit <message>",
		Examples:  []string{"mvcs commit \"fix the thing\""},
		NeedsRepo: true,
		Run:       func(args []string) int { return runCommit(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "checkout",
		Summary:   "Switch branches or restore a commit",
		Usage:     "mvcs checkout [--force] <ref>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCheckout(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "reset",
		Summary:   "Move HEAD and optionally the index/worktree",
		Usage:     "mvcs reset [--soft|--mixed|--hard] <ref>",
		Examples:  []string{"mvcs reset --hard HEAD~1"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runReset(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "branch",
		Summary:   "List, create, or delete branches",
		Usage:     "mvcs branch [--delete] [<name>]",
		Examples:  []string{"mvcs branch", "mvcs branch feature/x", "mvcs branch --delete feature/x"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runBranch(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "status",
		Summary:   "Show working tree status",
		Usage:     "mvcs status [-s|--porcelain]",
		Examples:  []string{"mvcs status", "mvcs status --porcelain"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runStatus(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "log",
		Summary:   "Show commit log",
		Usage:     "mvcs log [--oneline] [-n <count>]",
		Examples:  []string{"mvcs log", "mvcs log --oneline -n5"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runLog(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "diff",
		Summary:   "Show path-level diff between two revisions",
		Usage:     "mvcs diff <rev1> <rev2>",
		Examples:  []string{"mvcs diff HEAD~1 HEAD", "mvcs diff main dev"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runDiff(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "merge",
		Summary:   "Merge a branch into the current branch",
		Usage:     "mvcs merge (<branch>|--abort|--continue)",
		NeedsRepo: true,
		Run:       func(args []string) int { return runMerge(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "rebase",
		Summary:   "Replay commits onto a new base",
		Usage:     "mvcs rebase (<new-base>|--abort|--continue)",
		NeedsRepo: true,
		Run:       func(args []string) int { return runRebase(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "cat-file",
		Summary:   "Show object content, type, or size",
		Usage:     "mvcs cat-file (-t|-s|-p) <object>",
		Examples:  []string{"mvcs cat-file -p HEAD", "mvcs cat-file -t abc1234"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runCatFile(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "ls-tree",
		Summary:   "List a tree's direct entries",
		Usage:     "mvcs ls-tree <ref>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runLsTree(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "hash-object",
		Summary:   "Compute a blob's hash",
		Usage:     "mvcs hash-object [--write] <file>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runHashObject(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "config",
		Summary:   "Get or set a repository config value",
		Usage:     "mvcs config <key> [<value>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runConfig(repo, args) },
	})

	app.Register(&cli.Command{
		Name:    "clone",
		Summary: "Copy a repository into a new worktree",
		Usage:   "mvcs clone <src> <dst>",
		Run:     func(args []string) int { return runClone(repoDirName, logger, args) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "mvcs version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	// Determine which command will run so the repo is loaded only when needed.
	if len(args) > 0 {
		cmd := app.Lookup(args[0])
		if cmd != nil && cmd.NeedsRepo {
			var err error
			repo, err = gitcore.Open(".", repoDirName, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(128)
			}
			applyEnvOverrides(repo)
		}
	}

	os.Exit(app.Run(args))
}

func printVersion() {
	fmt.Printf("mvcs %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
