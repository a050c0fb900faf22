package main

import (
	"fmt"
	"os"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runStatus(repo *gitcore.Repository, args []string) int {
	porcelain := false
	for _, arg := range args {
		if arg == "-s" || arg == "--porcelain" {
			porcelain = true
		}
	}

	files, err := repo.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	if porcelain {
		return printPorcelain(files)
	}
	return printLongStatus(repo, files)
}

func printPorcelain(files []gitcore.FileStatus) int {
	for _, f := range files {
		x, y := statusCodes(f)
		fmt.Printf("%c%c %s\n", x, y, f.Path)
	}
	return 0
}

func statusCodes(f gitcore.FileStatus) (x, y byte) {
	x, y = ' ', ' '
	if f.Untracked {
		return '?', '?'
	}
	switch f.Staged {
	case gitcore.ChangeAdded:
		x = 'A'
	case gitcore.ChangeModified:
		x = 'M'
	case gitcore.ChangeDeleted:
		x = 'D'
	}
	switch f.Unstaged {
	case gitcore.ChangeModified:
		y = 'M'
	case gitcore.ChangeDeleted:
		y = 'D'
	}
	return x, y
}

func printLongStatus(repo *gitcore.Repository, files []gitcore.FileStatus) int {
	headState, err := repo.Refs.ReadHead()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	if headState.Attached {
		fmt.Printf("On branch %s\n", headState.Branch)
	} else {
		fmt.Printf("HEAD detached at %s\n", headState.Hash.Short())
	}

	var staged, unstaged, untracked []gitcore.FileStatus
	for _, f := range files {
		if f.Untracked {
			untracked = append(untracked, f)
			continue
		}
		if f.Staged != gitcore.ChangeNone {
			staged = append(staged, f)
		}
		if f.Unstaged != gitcore.ChangeNone {
			unstaged = append(unstaged, f)
		}
	}

	if len(staged) > 0 {
		fmt.Println("Changes to be committed:")
		for _, f := range staged {
			fmt.Printf("\t%-12s%s\n", stagedLabel(f.Staged), f.Path)
		}
		fmt.Println()
	}

	if len(unstaged) > 0 {
		fmt.Println("Changes not staged for commit:")
		for _, f := range unstaged {
			fmt.Printf("\t%-12s%s\n", unstagedLabel(f.Unstaged), f.Path)
		}
		fmt.Println()
	}

	if len(untracked) > 0 {
		fmt.Println("Untracked files:")
		for _, f := range untracked {
			fmt.Printf("\t%s\n", f.Path)
		}
		fmt.Println()
	}

	if len(staged) == 0 && len(unstaged) == 0 && len(untracked) == 0 {
		fmt.Println("nothing to commit, working tree clean")
	}

	return 0
}

func stagedLabel(k gitcore.ChangeKind) string {
	switch k {
	case gitcore.ChangeAdded:
		return "new file:"
	case gitcore.ChangeModified:
		return "modified:"
	case gitcore.ChangeDeleted:
		return "deleted:"
	default:
		return ""
	}
}

func unstagedLabel(k gitcore.ChangeKind) string {
	switch k {
	case gitcore.ChangeModified:
		return "modified:"
	case gitcore.ChangeDeleted:
		return "deleted:"
	default:
		return ""
	}
}
