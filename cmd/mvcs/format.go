package main

import (
	"fmt"
	"time"

	"github.com/rybkr/mvcs/internal/gitcore"
)

// dateFormat formats a unix-nanosecond timestamp for commit log output.
// Layout: "Mon Jan 2 15:04:05 2006 -0700".
func dateFormat(nanos int64) string {
	return time.Unix(0, nanos).Format("Mon Jan 2 15:04:05 2006 -0700")
}

// resolveRev resolves a revision string (HEAD, branch name, or full hash) to
// a hash via the ref store, surfacing a consistent "unknown revision" error
// for the CLI layer.
func resolveRev(repo *gitcore.Repository, rev string) (gitcore.Hash, error) {
	hash, ok, err := repo.Refs.Resolve(repo.Store, rev)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown revision: %s", rev)
	}
	return hash, nil
}

func firstLine(msg string) string {
	for i, r := range msg {
		if r == '\n' {
			return msg[:i]
		}
	}
	return msg
}
