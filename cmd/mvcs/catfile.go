package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runCatFile(repo *gitcore.Repository, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mvcs cat-file (-t|-s|-p) <object>")
		return 1
	}

	mode := args[0]
	hash, err := resolveRev(repo, args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	obj, err := repo.CatFile(hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	switch mode {
	case "-t":
		fmt.Println(obj.Kind())
	case "-s":
		fmt.Println(len(obj.Serialize()))
	case "-p":
		return prettyPrint(obj)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown flag: %q\n", mode)
		return 1
	}
	return 0
}

func prettyPrint(obj gitcore.Object) int {
	switch o := obj.(type) {
	case *gitcore.Commit:
		fmt.Printf("tree %s\n", o.Tree)
		for _, p := range o.Parent {
			fmt.Printf("parent %s\n", p)
		}
		fmt.Printf("author %s %d\n", o.Author, o.Timestamp)
		fmt.Println()
		fmt.Println(o.Message)
	case *gitcore.Tree:
		for _, entry := range o.Entries {
			fmt.Printf("%s %s\t%s\n", entry.Mode, entry.Hash, entry.Name)
		}
	case *gitcore.Blob:
		_, _ = os.Stdout.Write(o.Content)
	default:
		fmt.Fprintln(os.Stderr, "fatal: unknown object kind")
		return 128
	}
	return 0
}
