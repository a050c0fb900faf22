package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runBranch(repo *gitcore.Repository, args []string) int {
	deleteFlag := false
	var name string
	for _, arg := range args {
		if arg == "--delete" || arg == "-d" {
			deleteFlag = true
			continue
		}
		name = arg
	}

	if deleteFlag {
		if name == "" {
			fmt.Fprintln(os.Stderr, "usage: mvcs branch --delete <name>")
			return 1
		}
		if err := repo.DeleteBranch(name); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		return 0
	}

	if name != "" {
		if err := repo.CreateBranch(name); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		return 0
	}

	return listBranches(repo)
}

func listBranches(repo *gitcore.Repository) int {
	names, err := repo.Refs.ListBranches()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	headState, err := repo.Refs.ReadHead()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	for _, name := range names {
		if headState.Attached && name == headState.Branch {
			fmt.Printf("* %s\n", name)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return 0
}
