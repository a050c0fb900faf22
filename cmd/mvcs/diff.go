package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runDiff(repo *gitcore.Repository, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mvcs diff <rev1> <rev2>")
		return 1
	}

	entries, err := repo.Diff(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	for _, e := range entries {
		switch e.Status {
		case gitcore.DiffAdded:
			fmt.Printf("A\t%s\t%s\n", e.Path, e.New.Short())
		case gitcore.DiffDeleted:
			fmt.Printf("D\t%s\t%s\n", e.Path, e.Old.Short())
		case gitcore.DiffModified:
			fmt.Printf("M\t%s\t%s..%s\n", e.Path, e.Old.Short(), e.New.Short())
		}
	}
	return 0
}
