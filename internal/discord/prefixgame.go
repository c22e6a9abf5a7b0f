package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/session"
	"github.com/girlyearning/nyx/internal/wordlist"
)

const (
	prefixNamespace   = "prefixgame"
	prefixWindow      = 20 * time.Second
	prefixShortPoints = 5
	prefixLongPoints  = 10
	prefixLongAt      = 8
	prefixBonus       = 10
	reactionCooldown  = time.Second
)

type prefixResult struct {
	scores      map[string]int
	names       map[string]string
	used        map[string]map[string]bool // userID -> words accepted
	longestWord string
	longestUser string
	totalWords  int
}

// handlePrefixGame runs one 20-second round: everyone races to submit
// dictionary words starting with a random three-letter prefix.
func (b *Bot) handlePrefixGame(m *discordgo.MessageCreate, args []string) {
	key := session.Key(prefixNamespace, m.ChannelID)
	if _, err := b.Sessions.Start(key, prefixNamespace, session.StateActive); err != nil {
		b.sendError(m.ChannelID, "Prefix Game", "A prefix game is already running in this channel!")
		return
	}

	prefixes := b.commonWords.Prefixes(1, newRand())
	if len(prefixes) == 0 {
		b.Sessions.End(key)
		b.sendError(m.ChannelID, "Prefix Game", "I couldn't find a prefix to play with.")
		return
	}
	prefix := prefixes[0]

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title: "🔤 Prefix Game!",
		Description: fmt.Sprintf(
			"Submit words that start with **%s**!\nYou have **%d seconds**. "+
				"Short words are %d notes, %d+ letters are %d notes, and the longest word earns a +%d bonus!",
			strings.ToUpper(prefix), int(prefixWindow.Seconds()),
			prefixShortPoints, prefixLongAt, prefixLongPoints, prefixBonus),
		Color: nyxColor,
	})

	go b.runPrefixRound(key, m.ChannelID, prefix)
}

func (b *Bot) runPrefixRound(key, channelID, prefix string) {
	result := &prefixResult{
		scores: make(map[string]int),
		names:  make(map[string]string),
		used:   make(map[string]map[string]bool),
	}

	ctx, cancel := context.WithTimeout(context.Background(), prefixWindow)
	defer cancel()
	b.collect(ctx,
		func(m *discordgo.MessageCreate) bool {
			return m.ChannelID == channelID && m.Author != nil && !m.Author.Bot
		},
		func(m *discordgo.MessageCreate) {
			b.scorePrefixSubmission(result, prefix, m)
		},
	)

	b.Sessions.End(key)
	b.payoutPrefixRound(channelID, prefix, result)
}

func (b *Bot) scorePrefixSubmission(result *prefixResult, prefix string, m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) != 1 {
		return
	}
	word := strings.ToLower(fields[0])
	if !b.validPrefixWord(prefix, word) {
		return
	}

	userID := m.Author.ID
	if result.used[userID] == nil {
		result.used[userID] = make(map[string]bool)
	}
	if result.used[userID][word] {
		return
	}
	result.used[userID][word] = true

	result.scores[userID] += prefixWordPoints(word)
	result.names[userID] = displayName(m)
	result.totalWords++
	if len(word) > len(result.longestWord) {
		result.longestWord = word
		result.longestUser = userID
	}

	if !b.onCooldown("prefixreact:"+userID, reactionCooldown) {
		b.react(m.ChannelID, m.ID, "✅")
	}
}

// validPrefixWord accepts lowercase alphabetic words of 3+ letters that
// carry the round's prefix and appear in the validation dictionary.
func (b *Bot) validPrefixWord(prefix, word string) bool {
	if len(word) < 3 || !wordlist.IsAlphaWord(word) {
		return false
	}
	if !strings.HasPrefix(word, prefix) {
		return false
	}
	return b.dictionary.Contains(word)
}

func prefixWordPoints(word string) int {
	if len(word) >= prefixLongAt {
		return prefixLongPoints
	}
	return prefixShortPoints
}

func (b *Bot) payoutPrefixRound(channelID, prefix string, result *prefixResult) {
	if result.totalWords == 0 {
		b.sendEmbed(channelID, &discordgo.MessageEmbed{
			Title:       "🔤 Prefix Game — Time's Up!",
			Description: fmt.Sprintf("Nobody found a word starting with **%s**. The forest stays quiet.", strings.ToUpper(prefix)),
			Color:       nyxColor,
		})
		return
	}

	if result.longestUser != "" {
		result.scores[result.longestUser] += prefixBonus
	}
	for userID, points := range result.scores {
		b.award(userID, points)
	}

	b.sendEmbed(channelID, b.formatPrefixResults(prefix, result))
}

func (b *Bot) formatPrefixResults(prefix string, result *prefixResult) *discordgo.MessageEmbed {
	type ranked struct {
		userID string
		points int
	}
	standings := make([]ranked, 0, len(result.scores))
	for userID, points := range result.scores {
		standings = append(standings, ranked{userID, points})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].points != standings[j].points {
			return standings[i].points > standings[j].points
		}
		return standings[i].userID < standings[j].userID
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%d** words found for **%s**!\n\n", result.totalWords, strings.ToUpper(prefix))
	if result.longestUser != "" {
		fmt.Fprintf(&sb, "Longest word: **%s** by %s (+%d bonus)\n\n",
			result.longestWord, result.names[result.longestUser], prefixBonus)
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, r := range standings {
		if i >= len(medals) {
			break
		}
		fmt.Fprintf(&sb, "%s %s — **%d** notes\n", medals[i], result.names[r.userID], r.points)
	}

	return &discordgo.MessageEmbed{
		Title:       "🔤 Prefix Game — Results",
		Description: sb.String(),
		Color:       nyxColor,
	}
}

// handleWordCheck answers whether a word would score, for settling
// arguments after the round.
func (b *Bot) handleWordCheck(m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.sendError(m.ChannelID, "Word Check", "Usage: `"+b.Config.CommandPrefix+"wordcheck <word> [prefix]`")
		return
	}
	word := strings.ToLower(args[0])

	var sb strings.Builder
	if b.dictionary.Contains(word) {
		fmt.Fprintf(&sb, "**%s** is in my dictionary (%d notes).", word, prefixWordPoints(word))
	} else {
		fmt.Fprintf(&sb, "**%s** is not in my dictionary.", word)
	}
	if len(args) > 1 {
		prefix := strings.ToLower(args[1])
		if b.validPrefixWord(prefix, word) {
			fmt.Fprintf(&sb, "\nIt would count for prefix **%s**.", strings.ToUpper(prefix))
		} else {
			fmt.Fprintf(&sb, "\nIt would **not** count for prefix **%s**.", strings.ToUpper(prefix))
		}
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🔍 Word Check",
		Description: sb.String(),
		Color:       nyxColor,
	})
}
