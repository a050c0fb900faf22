package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runRebase(repo *gitcore.Repository, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: mvcs rebase (<new-base>|--abort|--continue)")
		return 1
	}

	var result *gitcore.RebaseResult
	var err error

	switch args[0] {
	case "--abort":
		if err := repo.RebaseAbort(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		return 0
	case "--continue":
		result, err = repo.RebaseContinue()
	default:
		result, err = repo.RebaseOnto(args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	return printRebaseResult(result)
}

func printRebaseResult(result *gitcore.RebaseResult) int {
	switch {
	case result.UpToDate:
		fmt.Println("Current branch is up to date.")
		return 0
	case len(result.Conflicts) > 0:
		fmt.Println("CONFLICT: fix conflicts and run 'mvcs rebase --continue'")
		for _, p := range result.Conflicts {
			fmt.Printf("\tboth modified:   %s\n", p)
		}
		return 1
	default:
		fmt.Println("Successfully rebased.")
		return 0
	}
}
