package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runInit(repoDirName string, logger *slog.Logger, _ []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	repo, err := gitcore.Init(wd, repoDirName, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Printf("Initialized empty repository in %s\n", repo.RepoDir)
	return 0
}
