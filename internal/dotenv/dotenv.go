package dotenv

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Load reads a .env file and sets the key-value pairs into the process
// environment. Variables already present in the environment win over
// file entries, so deployments can override the file.
func Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening env file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("error setting %s: %w", key, err)
		}
	}
	return scanner.Err()
}

// LoadDefault loads the .env file from the current directory
func LoadDefault() error {
	return Load(".env")
}

// parseLine extracts a key/value pair from one file line. Blank lines,
// comments and malformed lines report ok=false. An optional "export "
// prefix is accepted.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	if key == "" {
		return "", "", false
	}

	value = strings.TrimSpace(line[eq+1:])
	value = unquote(stripInlineComment(value))
	return key, value, true
}

// unquote strips one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// stripInlineComment drops a trailing comment. A '#' begins a comment
// only at the start of the value or after whitespace, and never inside
// a quoted section.
func stripInlineComment(s string) string {
	inSingle := false
	inDouble := false
	prevIsSpace := true
	for i, r := range s {
		switch r {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble && (i == 0 || prevIsSpace) {
				return strings.TrimSpace(s[:i])
			}
		}
		prevIsSpace = unicode.IsSpace(r)
	}
	return strings.TrimSpace(s)
}
