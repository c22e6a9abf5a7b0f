package discord

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/session"
)

const (
	unscrambleNamespace = "unscramble"
	unscrambleRounds    = 3
	unscramblePoints    = 5
	unscrambleMinLen    = 5
	unscrambleMaxLen    = 9
)

type unscrambleGame struct {
	words     []string // one per round
	round     int      // index into words
	scrambled string
	hintUsed  bool
	scores    map[string]int
	names     map[string]string
}

// handleUnscramble starts a three-round unscramble game in the channel.
func (b *Bot) handleUnscramble(m *discordgo.MessageCreate, args []string) {
	rng := newRand()
	words, ok := b.commonWords.Sample(unscrambleRounds, unscrambleMinLen, unscrambleMaxLen, rng)
	if !ok {
		b.sendError(m.ChannelID, "Unscramble", "I couldn't find enough words to scramble.")
		return
	}

	game := &unscrambleGame{
		words:     words,
		scrambled: scrambleWord(words[0], rng),
		scores:    make(map[string]int),
		names:     make(map[string]string),
	}
	key := session.Key(unscrambleNamespace, m.ChannelID)
	_, err := b.Sessions.StartWith(key, unscrambleNamespace, session.StateActive, func(sess *session.Session) {
		sess.ChannelID = m.ChannelID
		sess.Data = game
	})
	if err != nil {
		b.sendError(m.ChannelID, "Unscramble", "An unscramble game is already running in this channel! Use `"+b.Config.CommandPrefix+"endunscramble` to stop it.")
		return
	}

	b.sendEmbed(m.ChannelID, b.formatUnscrambleRound(0, game.scrambled))
}

// scrambleWord shuffles letters until the result differs from the
// original, reversing as a last resort for degenerate words.
func scrambleWord(word string, rng *rand.Rand) string {
	letters := []byte(word)
	for attempt := 0; attempt < 10; attempt++ {
		rng.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
		if string(letters) != word {
			return string(letters)
		}
	}
	reversed := []byte(word)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	return string(reversed)
}

func (b *Bot) formatUnscrambleRound(round int, scrambled string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔀 Unscramble — Round %d of %d", round+1, unscrambleRounds),
		Description: fmt.Sprintf(
			"Unscramble this word: **%s**\nFirst correct guess earns **%d** notes. `%shint` for a hint, `%sreveal` to skip.",
			strings.ToUpper(scrambled), unscramblePoints,
			b.Config.CommandPrefix, b.Config.CommandPrefix),
		Color: nyxColor,
	}
}

// applyUnscrambleGuess records a correct guess on the game and returns
// the solved word, or "" when the guess misses. An exhausted game
// ignores guesses.
func applyUnscrambleGuess(g *unscrambleGame, userID, name, guess string) string {
	if g.round >= len(g.words) {
		return ""
	}
	if guess != g.words[g.round] {
		return ""
	}
	g.scores[userID] += unscramblePoints
	g.names[userID] = name
	return g.words[g.round]
}

// handleUnscrambleGuess checks non-command messages against the current
// word.
func (b *Bot) handleUnscrambleGuess(m *discordgo.MessageCreate) {
	key := session.Key(unscrambleNamespace, m.ChannelID)

	fields := strings.Fields(m.Content)
	if len(fields) != 1 {
		return
	}
	guess := strings.ToLower(fields[0])

	var solvedWord string
	b.Sessions.Update(key, func(sess *session.Session) {
		if g, ok := sess.Data.(*unscrambleGame); ok {
			solvedWord = applyUnscrambleGuess(g, m.Author.ID, displayName(m), guess)
		}
	})
	if solvedWord == "" {
		return
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🔀 Unscramble",
		Description: fmt.Sprintf("🎉 %s got it — the word was **%s** (+%d notes)!", displayName(m), solvedWord, unscramblePoints),
		Color:       nyxColor,
	})
	b.advanceUnscramble(key, m.ChannelID)
}

// advanceUnscramble moves to the next round or finishes the game.
func (b *Bot) advanceUnscramble(key, channelID string) {
	var advanced, finished bool
	var round int
	var scrambled string
	b.Sessions.Update(key, func(sess *session.Session) {
		g, ok := sess.Data.(*unscrambleGame)
		if !ok {
			return
		}
		advanced = true
		g.round++
		g.hintUsed = false
		if g.round >= len(g.words) {
			finished = true
			return
		}
		g.scrambled = scrambleWord(g.words[g.round], newRand())
		round, scrambled = g.round, g.scrambled
	})
	if !advanced {
		return
	}

	if finished {
		// Ended sessions leave the registry, so the record is ours alone.
		if sess, ok := b.Sessions.End(key); ok {
			if game, isGame := sess.Data.(*unscrambleGame); isGame {
				b.payoutUnscramble(channelID, game)
			}
		}
		return
	}
	b.sendEmbed(channelID, b.formatUnscrambleRound(round, scrambled))
}

func (b *Bot) payoutUnscramble(channelID string, game *unscrambleGame) {
	if len(game.scores) == 0 {
		b.sendEmbed(channelID, &discordgo.MessageEmbed{
			Title:       "🔀 Unscramble — Game Over",
			Description: "Nobody solved a single word. The letters keep their secrets.",
			Color:       nyxColor,
		})
		return
	}

	type ranked struct {
		userID string
		points int
	}
	standings := make([]ranked, 0, len(game.scores))
	for userID, points := range game.scores {
		b.award(userID, points)
		standings = append(standings, ranked{userID, points})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].points != standings[j].points {
			return standings[i].points > standings[j].points
		}
		return standings[i].userID < standings[j].userID
	})

	var sb strings.Builder
	sb.WriteString("Final scores:\n\n")
	for _, r := range standings {
		fmt.Fprintf(&sb, "**%s** — %d notes\n", game.names[r.userID], r.points)
	}
	b.sendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "🔀 Unscramble — Game Over",
		Description: sb.String(),
		Color:       nyxColor,
	})
}

// handleUnscrambleHint shows the first and last letters of the current
// word, once per round.
func (b *Bot) handleUnscrambleHint(m *discordgo.MessageCreate, args []string) {
	key := session.Key(unscrambleNamespace, m.ChannelID)

	var hint string
	ok := b.Sessions.Update(key, func(sess *session.Session) {
		g, isGame := sess.Data.(*unscrambleGame)
		if !isGame || g.round >= len(g.words) {
			return
		}
		if g.hintUsed {
			hint = "You already used this round's hint!"
			return
		}
		g.hintUsed = true
		word := g.words[g.round]
		pattern := make([]string, len(word))
		for i := range pattern {
			pattern[i] = "\\_"
		}
		pattern[0] = strings.ToUpper(string(word[0]))
		pattern[len(word)-1] = string(word[len(word)-1])
		hint = fmt.Sprintf("The word looks like: %s", strings.Join(pattern, " "))
	})
	if !ok || hint == "" {
		return
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "💡 Unscramble Hint",
		Description: hint,
		Color:       nyxColor,
	})
}

// handleUnscrambleReveal gives the answer away and skips to the next
// round.
func (b *Bot) handleUnscrambleReveal(m *discordgo.MessageCreate, args []string) {
	key := session.Key(unscrambleNamespace, m.ChannelID)

	var word string
	b.Sessions.Update(key, func(sess *session.Session) {
		if g, ok := sess.Data.(*unscrambleGame); ok && g.round < len(g.words) {
			word = g.words[g.round]
		}
	})
	if word == "" {
		return
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🔀 Unscramble",
		Description: fmt.Sprintf("The word was **%s**. No notes this round!", word),
		Color:       nyxColor,
	})
	b.advanceUnscramble(key, m.ChannelID)
}

// handleEndUnscramble cancels the game, paying out what was earned.
func (b *Bot) handleEndUnscramble(m *discordgo.MessageCreate, args []string) {
	key := session.Key(unscrambleNamespace, m.ChannelID)
	sess, ok := b.Sessions.End(key)
	if !ok {
		b.sendError(m.ChannelID, "Unscramble", "There's no unscramble game running here.")
		return
	}
	if game, isGame := sess.Data.(*unscrambleGame); isGame {
		b.payoutUnscramble(m.ChannelID, game)
	}
}
