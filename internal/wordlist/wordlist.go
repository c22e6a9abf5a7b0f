// Package wordlist loads and caches the word files the minigames draw from:
// a common-words list for puzzle generation and a large dictionary for
// validating player submissions. Missing files fall back to a small built-in
// list so the games stay playable in a fresh deployment.
package wordlist

import (
	"bufio"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
)

// fallbackWords keeps the games playable when no word files ship alongside
// the bot.
var fallbackWords = []string{
	"the", "and", "cats", "dogs", "bird", "fish", "tree", "book", "desk", "lamp",
	"door", "wind", "house", "phone", "water", "paper", "chair", "table", "light",
	"music", "heart", "night", "ocean", "river", "stone", "smile", "dream", "peace",
	"magic", "power", "trust", "brave", "dance", "laugh", "shine", "grace", "storm",
	"cloud", "frost", "field", "beach", "craft", "pride", "teach", "learn", "build",
	"paint", "write", "climb", "flame", "horse", "eagle", "garden", "bridge",
	"carpet", "dragon", "engine", "forest", "hammer", "island", "jungle", "kettle",
	"ladder", "margin", "needle", "orange", "planet", "quartz", "ribbon", "silver",
	"travel", "unique", "rainbow", "mountain", "computer", "keyboard", "elephant",
	"butterfly", "wonderful", "beautiful", "telephone", "adventure",
}

// List is a cached word list loaded from one file.
type List struct {
	mu     sync.Mutex
	path   string
	words  []string
	set    map[string]bool
	loaded bool
	logger *slog.Logger
}

// NewList creates a lazy-loading list backed by the file at path.
func NewList(path string, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{path: path, logger: logger.With("component", "wordlist", "path", path)}
}

// Words returns every alphabetic word of length [minLen, maxLen] from the
// list, lowercased. The backing file is read once and cached; a missing or
// unreadable file yields the built-in fallback list.
func (l *List) Words(minLen, maxLen int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded()

	var out []string
	for _, w := range l.words {
		if len(w) >= minLen && len(w) <= maxLen {
			out = append(out, w)
		}
	}
	return out
}

// Contains reports whether the list holds word (lowercased).
func (l *List) Contains(word string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded()
	return l.set[strings.ToLower(word)]
}

// Len reports the number of cached words.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLoaded()
	return len(l.words)
}

// Prefixes extracts up to count distinct 3-letter prefixes from the list, in
// random order.
func (l *List) Prefixes(count int, rng *rand.Rand) []string {
	seen := make(map[string]bool)
	var prefixes []string
	for _, w := range l.Words(3, 64) {
		p := w[:3]
		if !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	shuffle(prefixes, rng)
	if count < len(prefixes) {
		prefixes = prefixes[:count]
	}
	return prefixes
}

// Sample returns n random distinct words of length [minLen, maxLen]. It
// reports false when the list holds fewer than n eligible words.
func (l *List) Sample(n, minLen, maxLen int, rng *rand.Rand) ([]string, bool) {
	eligible := l.Words(minLen, maxLen)
	if len(eligible) < n {
		return nil, false
	}
	shuffle(eligible, rng)
	return eligible[:n], true
}

func shuffle(words []string, rng *rand.Rand) {
	swap := func(i, j int) { words[i], words[j] = words[j], words[i] }
	if rng != nil {
		rng.Shuffle(len(words), swap)
	} else {
		rand.Shuffle(len(words), swap)
	}
}

// ensureLoaded reads and filters the backing file once. Callers must hold
// l.mu.
func (l *List) ensureLoaded() {
	if l.loaded {
		return
	}
	l.loaded = true

	words, err := readWords(l.path)
	if err != nil {
		l.logger.Warn("word file unavailable, using fallback list", "error", err)
		words = append([]string(nil), fallbackWords...)
	} else if len(words) == 0 {
		l.logger.Warn("word file empty, using fallback list")
		words = append([]string(nil), fallbackWords...)
	} else {
		l.logger.Debug("word list loaded", "words", len(words))
	}

	l.words = words
	l.set = make(map[string]bool, len(words))
	for _, w := range words {
		l.set[w] = true
	}
}

func readWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(word) >= 3 && isAlpha(word) {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// IsAlphaWord reports whether word is non-empty ASCII letters only.
func IsAlphaWord(word string) bool {
	return isAlpha(word)
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
