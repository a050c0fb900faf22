package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runMerge(repo *gitcore.Repository, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: mvcs merge (<branch>|--abort|--continue)")
		return 1
	}

	switch args[0] {
	case "--abort":
		if err := repo.MergeAbort(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		return 0
	case "--continue":
		fmt.Fprintln(os.Stderr, "fatal: resolve conflicts and run 'mvcs commit' to continue a merge")
		return 1
	}

	result, err := repo.MergeBranch(args[0])
	var conflictErr *gitcore.ConflictError
	if errors.As(err, &conflictErr) {
		fmt.Printf("Automatic merge failed; fix conflicts and commit the result:\n")
		for _, p := range conflictErr.Paths {
			fmt.Printf("\tboth modified:   %s\n", p)
		}
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	switch {
	case result.UpToDate:
		fmt.Println("Already up to date.")
	case result.FastForward:
		fmt.Printf("Fast-forward to %s\n", result.MergeCommit.Short())
	default:
		fmt.Printf("Merge made by the three-way merge strategy: %s\n", result.MergeCommit.Short())
	}
	return 0
}
