package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runClone(repoDirName string, logger *slog.Logger, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mvcs clone <src> <dst>")
		return 1
	}

	repo, err := gitcore.Clone(args[0], args[1], repoDirName, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Printf("Cloned into %s\n", repo.WorkDir)
	return 0
}
