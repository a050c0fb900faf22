package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runReset(repo *gitcore.Repository, args []string) int {
	mode := gitcore.ResetMixed
	var rev string

	for _, arg := range args {
		switch arg {
		case "--soft":
			mode = gitcore.ResetSoft
		case "--mixed":
			mode = gitcore.ResetMixed
		case "--hard":
			mode = gitcore.ResetHard
		default:
			rev = arg
		}
	}
	if rev == "" {
		fmt.Fprintln(os.Stderr, "usage: mvcs reset [--soft|--mixed|--hard] <ref>")
		return 1
	}

	if err := repo.Reset(mode, rev); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
