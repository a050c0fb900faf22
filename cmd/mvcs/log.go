package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rybkr/mvcs/internal/gitcore"
)

func runLog(repo *gitcore.Repository, args []string) int {
	maxCount := 0
	oneline := false

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--oneline":
			oneline = true
		case args[i] == "-n" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: invalid -n value: %q\n", args[i])
				return 1
			}
			maxCount = n
		case strings.HasPrefix(args[i], "-n"):
			n, err := strconv.Atoi(args[i][2:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: invalid -n value: %q\n", args[i][2:])
				return 1
			}
			maxCount = n
		default:
			fmt.Fprintf(os.Stderr, "error: unknown option: %q\n", args[i])
			return 1
		}
	}

	commits, err := repo.Log()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	if maxCount > 0 && len(commits) > maxCount {
		commits = commits[:maxCount]
	}

	decorations, err := buildDecorations(repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	for i, ref := range commits {
		c := ref.Commit
		decor := ""
		if d, ok := decorations[ref.Hash]; ok {
			decor = " (" + d + ")"
		}

		if oneline {
			fmt.Printf("%s%s %s\n", ref.Hash.Short(), decor, firstLine(c.Message))
			continue
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("commit %s%s\n", ref.Hash, decor)
		if len(c.Parent) > 1 {
			parentStrs := make([]string, len(c.Parent))
			for j, p := range c.Parent {
				parentStrs[j] = p.Short()
			}
			fmt.Printf("Merge: %s\n", strings.Join(parentStrs, " "))
		}
		fmt.Printf("Author: %s\n", c.Author)
		fmt.Printf("Date:   %s\n", dateFormat(c.Timestamp))
		fmt.Println()
		for _, line := range strings.Split(c.Message, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}

	return 0
}

// buildDecorations maps a commit hash to a "HEAD -> branch, other-branch"
// style annotation, the way `git log` decorates branch tips. Tag decoration
// is not built: tag objects are out of scope.
func buildDecorations(repo *gitcore.Repository) (map[gitcore.Hash]string, error) {
	result := make(map[gitcore.Hash]string)

	names, err := repo.Refs.ListBranches()
	if err != nil {
		return nil, err
	}
	headState, err := repo.Refs.ReadHead()
	if err != nil {
		return nil, err
	}

	byHash := make(map[gitcore.Hash][]string)
	for _, name := range names {
		hash, ok, err := repo.Refs.Resolve(repo.Store, name)
		if err != nil {
			return nil, err
		}
		if !ok || hash == "" {
			continue
		}
		label := name
		if headState.Attached && headState.Branch == name {
			label = "HEAD -> " + name
		}
		byHash[hash] = append(byHash[hash], label)
	}

	if !headState.Attached && headState.Hash != "" {
		byHash[headState.Hash] = append([]string{"HEAD"}, byHash[headState.Hash]...)
	}

	for hash, labels := range byHash {
		result[hash] = strings.Join(labels, ", ")
	}
	return result, nil
}
