package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runLsTree(repo *gitcore.Repository, args []string) int {
	ref := "HEAD"
	if len(args) > 0 {
		ref = args[0]
	}

	entries, err := repo.LsTree(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	for _, e := range entries {
		fmt.Printf("%s %s\t%s\n", e.Mode, e.Hash, e.Name)
	}
	return 0
}
