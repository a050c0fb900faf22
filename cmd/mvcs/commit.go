package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runCommit(repo *gitcore.Repository, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mvcs commit <message>")
		return 1
	}
	message := strings.Join(args, " ")

	hash, err := repo.Commit(message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Printf("%s %s\n", hash.Short(), firstLine(message))
	return 0
}
