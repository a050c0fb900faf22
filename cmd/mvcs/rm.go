package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runRm(repo *gitcore.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mvcs rm <path>...")
		return 1
	}
	if err := repo.Rm(args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
