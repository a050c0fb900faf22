package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runCheckout(repo *gitcore.Repository, args []string) int {
	force := false
	var ref string
	for _, arg := range args {
		if arg == "--force" || arg == "-f" {
			force = true
			continue
		}
		ref = arg
	}
	if ref == "" {
		fmt.Fprintln(os.Stderr, "usage: mvcs checkout [--force] <ref>")
		return 1
	}

	if err := repo.Checkout(ref, force); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
