package discord

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/session"
	"github.com/girlyearning/nyx/internal/wordgrid"
)

const (
	wordHuntNamespace = "wordhunt"
	wordHuntEasy      = "easy"
	wordHuntHard      = "hard"

	easyGridSize  = 5
	easyWordCount = 3
	easyWordLen   = 4
	easyReward    = 10

	hardGridSize   = 8
	hardWordCount  = 4
	hardWordMinLen = 4
	hardWordMaxLen = 7
	hardReward     = 15

	wordHuntResultsFile = "wordhunt_results.log"
)

type wordHuntGame struct {
	difficulty string
	grid       *wordgrid.Grid
	words      []string
	found      map[string]string // word -> finder userID
	names      map[string]string
	reward     int
	started    time.Time
}

func wordHuntKey(difficulty, channelID string) string {
	return session.Key(wordHuntNamespace, difficulty+":"+channelID)
}

// handleEasyWordHunt starts the small-grid hunt.
func (b *Bot) handleEasyWordHunt(m *discordgo.MessageCreate, args []string) {
	b.startWordHunt(m, wordHuntEasy)
}

// handleHardWordHunt starts the large-grid hunt.
func (b *Bot) handleHardWordHunt(m *discordgo.MessageCreate, args []string) {
	b.startWordHunt(m, wordHuntHard)
}

func (b *Bot) startWordHunt(m *discordgo.MessageCreate, difficulty string) {
	rng := newRand()
	size, count, minLen, maxLen, reward := easyGridSize, easyWordCount, easyWordLen, easyWordLen, easyReward
	if difficulty == wordHuntHard {
		size, count, minLen, maxLen, reward = hardGridSize, hardWordCount, hardWordMinLen, hardWordMaxLen, hardReward
	}

	// Placement can fail on unlucky word sets; redraw a few times.
	var grid *wordgrid.Grid
	var words []string
	for attempt := 0; attempt < 5 && grid == nil; attempt++ {
		sample, ok := b.commonWords.Sample(count, minLen, maxLen, rng)
		if !ok {
			break
		}
		if g, placed := wordgrid.Build(size, sample, rng); placed {
			grid, words = g, sample
		}
	}
	if grid == nil {
		b.sendError(m.ChannelID, "Word Hunt", "I couldn't build a puzzle grid. Try again?")
		return
	}

	game := &wordHuntGame{
		difficulty: difficulty,
		grid:       grid,
		words:      words,
		found:      make(map[string]string),
		names:      make(map[string]string),
		reward:     reward,
		started:    time.Now(),
	}
	key := wordHuntKey(difficulty, m.ChannelID)
	_, err := b.Sessions.StartWith(key, wordHuntNamespace, session.StateActive, func(sess *session.Session) {
		sess.ChannelID = m.ChannelID
		sess.Data = game
	})
	if err != nil {
		b.sendError(m.ChannelID, "Word Hunt", fmt.Sprintf("A %s word hunt is already running in this channel!", difficulty))
		return
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🔎 Word Hunt (%s)", difficulty),
		Description: fmt.Sprintf(
			"%s\nFind **%d** hidden words — any direction, even backwards! Each is worth **%d** notes.\n`%s%shint` for hints, `%s%sreveal` to give up.",
			grid.Format(), len(words), reward,
			b.Config.CommandPrefix, difficulty, b.Config.CommandPrefix, difficulty),
		Color: nyxColor,
	})
}

// handleWordHuntGuess checks non-command messages against the hidden
// words of either difficulty running in the channel.
func (b *Bot) handleWordHuntGuess(m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	if len(fields) != 1 {
		return
	}
	guess := strings.ToLower(fields[0])

	for _, difficulty := range []string{wordHuntEasy, wordHuntHard} {
		key := wordHuntKey(difficulty, m.ChannelID)

		var status string // "", "found", "duplicate", "done"
		var foundCount, totalWords int
		b.Sessions.Update(key, func(sess *session.Session) {
			g, ok := sess.Data.(*wordHuntGame)
			if !ok {
				return
			}
			hidden := false
			for _, w := range g.words {
				if w == guess {
					hidden = true
					break
				}
			}
			if !hidden {
				return
			}
			if _, taken := g.found[guess]; taken {
				status = "duplicate"
				return
			}
			g.found[guess] = m.Author.ID
			g.names[m.Author.ID] = displayName(m)
			foundCount, totalWords = len(g.found), len(g.words)
			status = "found"
			if foundCount == totalWords {
				status = "done"
			}
		})

		switch status {
		case "duplicate":
			b.sendText(m.ChannelID, fmt.Sprintf("**%s** was already found!", guess))
		case "found":
			b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
				Title: fmt.Sprintf("🔎 Word Hunt (%s)", difficulty),
				Description: fmt.Sprintf("🎉 %s found **%s**! %d of %d words down.",
					displayName(m), guess, foundCount, totalWords),
				Color: nyxColor,
			})
		case "done":
			// Ended sessions leave the registry, so the record is ours alone.
			if sess, ok := b.Sessions.End(key); ok {
				if game, isGame := sess.Data.(*wordHuntGame); isGame {
					b.finishWordHunt(m.ChannelID, game, false)
				}
			}
		}
	}
}

// finishWordHunt pays out found words, shows results and appends to the
// results log. revealed marks games ended by a reveal command.
func (b *Bot) finishWordHunt(channelID string, game *wordHuntGame, revealed bool) {
	perUser := make(map[string]int)
	for _, userID := range game.found {
		perUser[userID] += game.reward
	}
	for userID, points := range perUser {
		b.award(userID, points)
	}

	var sb strings.Builder
	if revealed {
		sb.WriteString("The hunt is over. The hidden words were:\n\n")
	} else {
		sb.WriteString("All words found!\n\n")
	}
	words := append([]string(nil), game.words...)
	sort.Strings(words)
	for _, w := range words {
		if finder, ok := game.found[w]; ok {
			fmt.Fprintf(&sb, "**%s** — found by %s (+%d notes)\n", w, game.names[finder], game.reward)
		} else {
			fmt.Fprintf(&sb, "**%s** — unfound\n", w)
		}
	}

	b.sendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔎 Word Hunt (%s) — Results", game.difficulty),
		Description: sb.String(),
		Color:       nyxColor,
	})
	b.appendWordHuntResult(channelID, game, revealed)
}

// appendWordHuntResult records one finished game per line.
func (b *Bot) appendWordHuntResult(channelID string, game *wordHuntGame, revealed bool) {
	line := fmt.Sprintf("%s,%s,%s,%d/%d,%s,revealed=%t,%s\n",
		time.Now().Format(time.RFC3339), game.difficulty, channelID,
		len(game.found), len(game.words),
		time.Since(game.started).Round(time.Second), revealed,
		strings.Join(game.words, " "))

	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	f, err := os.OpenFile(b.statePath(wordHuntResultsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		b.logger.Error("error opening word hunt results log", "error", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		b.logger.Error("error appending word hunt result", "error", err)
	}
}

func (b *Bot) handleEasyHint(m *discordgo.MessageCreate, args []string) {
	b.wordHuntHint(m, wordHuntEasy)
}

func (b *Bot) handleHardHint(m *discordgo.MessageCreate, args []string) {
	b.wordHuntHint(m, wordHuntHard)
}

// wordHuntHint shows the first letters of the words still hidden.
func (b *Bot) wordHuntHint(m *discordgo.MessageCreate, difficulty string) {
	key := wordHuntKey(difficulty, m.ChannelID)

	var hints []string
	ok := b.Sessions.Update(key, func(sess *session.Session) {
		g, isGame := sess.Data.(*wordHuntGame)
		if !isGame {
			return
		}
		for _, w := range g.words {
			if _, found := g.found[w]; !found {
				hints = append(hints, fmt.Sprintf("**%s** (%d letters)", strings.ToUpper(string(w[0])), len(w)))
			}
		}
	})
	if !ok {
		b.sendError(m.ChannelID, "Word Hunt", fmt.Sprintf("There's no %s word hunt running here.", difficulty))
		return
	}

	sort.Strings(hints)
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "💡 Word Hunt Hint",
		Description: "Still hidden, starting with: " + strings.Join(hints, ", "),
		Color:       nyxColor,
	})
}

func (b *Bot) handleEasyReveal(m *discordgo.MessageCreate, args []string) {
	b.wordHuntReveal(m, wordHuntEasy)
}

func (b *Bot) handleHardReveal(m *discordgo.MessageCreate, args []string) {
	b.wordHuntReveal(m, wordHuntHard)
}

// wordHuntReveal ends the game, paying out only what was found.
func (b *Bot) wordHuntReveal(m *discordgo.MessageCreate, difficulty string) {
	key := wordHuntKey(difficulty, m.ChannelID)
	sess, ok := b.Sessions.End(key)
	if !ok {
		b.sendError(m.ChannelID, "Word Hunt", fmt.Sprintf("There's no %s word hunt running here.", difficulty))
		return
	}
	if game, isGame := sess.Data.(*wordHuntGame); isGame {
		b.finishWordHunt(m.ChannelID, game, true)
	}
}
