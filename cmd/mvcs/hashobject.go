package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runHashObject(repo *gitcore.Repository, args []string) int {
	write := false
	var path string
	for _, arg := range args {
		if arg == "--write" || arg == "-w" {
			write = true
			continue
		}
		path = arg
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: mvcs hash-object [--write] <file>")
		return 1
	}

	content, err := os.ReadFile(path) //nolint:gosec // path supplied by the CLI invoker, not from an untrusted network source
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	hash, err := repo.HashObject(content, write)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Println(hash)
	return 0
}
