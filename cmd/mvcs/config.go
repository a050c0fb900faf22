package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runConfig(repo *gitcore.Repository, args []string) int {
	switch len(args) {
	case 1:
		value, ok := repo.ConfigGet(args[0])
		if !ok {
			return 1
		}
		fmt.Println(value)
		return 0
	case 2:
		if err := repo.ConfigSet(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		return 0
	default:
		fmt.Fprintln(os.Stderr, "usage: mvcs config <key> [<value>]")
		return 1
	}
}
