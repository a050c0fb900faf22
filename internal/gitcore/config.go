package gitcore

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Config is the repo-local key/value store backing the "config" file: a
// UTF-8 text file where the first space on each line separates key and
// value.
type Config struct {
	values map[string]string
}

func LoadConfig(path string) (*Config, error) {
	c := &Config{values: make(map[string]string)}

	f, err := os.Open(path) //nolint:gosec // repo-internal path
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		c.values[line[:sp]] = line[sp+1:]
	}
	return c, scanner.Err()
}

func (c *Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *Config) Set(key, value string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[key] = value
}

func (c *Config) Save(path string) error {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s %s\n", k, c.values[k])
	}
	return atomicWriteFile(path, []byte(buf.String()))
}

// AuthorString assembles the "Name <email>" signature used as a commit's
// author field, falling back to placeholder values when config has not been
// populated yet.
func (c *Config) AuthorString() string {
	name, ok := c.Get("username")
	if !ok || name == "" {
		name = "unknown"
	}
	email, ok := c.Get("email")
	if !ok || email == "" {
		email = "unknown@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
