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
	allitNamespace  = "alliteration"
	allitWindow     = 30 * time.Second
	allitPoints     = 5
	allitTopicsFile = "alliteration_rotation.json"
)

type allitTopic struct {
	Theme  string
	Letter byte
}

var allitTopics = []allitTopic{
	{"angry animals", 'a'},
	{"bashful bakers", 'b'},
	{"curious cats", 'c'},
	{"dancing dragons", 'd'},
	{"eager elephants", 'e'},
	{"forgetful foxes", 'f'},
	{"grumpy gardeners", 'g'},
	{"hungry hedgehogs", 'h'},
	{"impatient inventors", 'i'},
	{"jittery jugglers", 'j'},
	{"kindly knights", 'k'},
	{"lazy lizards", 'l'},
	{"mischievous moths", 'm'},
	{"nervous nurses", 'n'},
	{"odd octopuses", 'o'},
	{"peculiar pirates", 'p'},
	{"quiet queens", 'q'},
	{"restless ravens", 'r'},
	{"sleepy spiders", 's'},
	{"tiny tigers", 't'},
	{"unlucky unicorns", 'u'},
	{"vexed vampires", 'v'},
	{"wandering wizards", 'w'},
	{"yawning yaks", 'y'},
	{"zany zebras", 'z'},
}

type allitResult struct {
	accepted map[string][]string // userID -> phrases
	names    map[string]string
}

// handleAlliterations runs one 30-second round against a topic drawn
// from the persisted no-repeat rotation.
func (b *Bot) handleAlliterations(m *discordgo.MessageCreate, args []string) {
	key := session.Key(allitNamespace, m.ChannelID)
	if _, err := b.Sessions.Start(key, allitNamespace, session.StateActive); err != nil {
		b.sendError(m.ChannelID, "Alliterations", "An alliteration round is already running in this channel!")
		return
	}

	b.stateMu.Lock()
	topic := allitTopics[b.nextRotation(b.statePath(allitTopicsFile), len(allitTopics))]
	b.stateMu.Unlock()

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title: "🎭 Alliterations!",
		Description: fmt.Sprintf(
			"Topic: **%s** — give me phrases where the words start with **%s**!\nYou have **%d seconds**; each accepted phrase earns **%d** notes.",
			topic.Theme, strings.ToUpper(string(topic.Letter)),
			int(allitWindow.Seconds()), allitPoints),
		Color: nyxColor,
	})

	go b.runAllitRound(key, m.ChannelID, topic)
}

func (b *Bot) runAllitRound(key, channelID string, topic allitTopic) {
	result := &allitResult{
		accepted: make(map[string][]string),
		names:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(context.Background(), allitWindow)
	defer cancel()
	b.collect(ctx,
		func(m *discordgo.MessageCreate) bool {
			return m.ChannelID == channelID && m.Author != nil && !m.Author.Bot
		},
		func(m *discordgo.MessageCreate) {
			phrase := strings.TrimSpace(m.Content)
			if !b.validateAlliteration(ctx, topic.Letter, phrase) {
				return
			}
			result.accepted[m.Author.ID] = append(result.accepted[m.Author.ID], phrase)
			result.names[m.Author.ID] = displayName(m)
			b.react(m.ChannelID, m.ID, "✅")
		},
	)

	b.Sessions.End(key)
	b.payoutAllitRound(channelID, topic, result)
}

// validateAlliteration asks the LLM for a VALID/INVALID verdict and
// falls back to the letter heuristic when no AI is available or the
// call fails.
func (b *Bot) validateAlliteration(ctx context.Context, letter byte, phrase string) bool {
	if b.AI == nil {
		return heuristicAlliteration(letter, phrase)
	}

	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	verdict, err := b.AI.Generate(callCtx, Prompt{
		System: fmt.Sprintf(
			"You judge alliteration submissions. Reply with exactly VALID if the phrase is a genuine alliteration on the letter %q, otherwise reply with exactly INVALID.",
			string(letter)),
		Temperature: 0,
		MaxTokens:   4,
		Message:     phrase,
	})
	if err != nil {
		b.logger.Warn("alliteration validation fell back to heuristic", "error", err)
		return heuristicAlliteration(letter, phrase)
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "VALID")
}

// heuristicAlliteration accepts phrases of at least two alphabetic
// words that all begin with the topic letter.
func heuristicAlliteration(letter byte, phrase string) bool {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		w = strings.Trim(w, ".,!?'\"")
		if w == "" || !wordlist.IsAlphaWord(w) || w[0] != letter {
			return false
		}
	}
	return true
}

func (b *Bot) payoutAllitRound(channelID string, topic allitTopic, result *allitResult) {
	if len(result.accepted) == 0 {
		b.sendEmbed(channelID, &discordgo.MessageEmbed{
			Title:       "🎭 Alliterations — Time's Up!",
			Description: fmt.Sprintf("No alliterations for **%s**? The %s are disappointed.", topic.Theme, topic.Theme),
			Color:       nyxColor,
		})
		return
	}

	type ranked struct {
		userID string
		count  int
	}
	standings := make([]ranked, 0, len(result.accepted))
	for userID, phrases := range result.accepted {
		b.award(userID, len(phrases)*allitPoints)
		standings = append(standings, ranked{userID, len(phrases)})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].count != standings[j].count {
			return standings[i].count > standings[j].count
		}
		return standings[i].userID < standings[j].userID
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic was **%s**:\n\n", topic.Theme)
	for _, r := range standings {
		fmt.Fprintf(&sb, "**%s** — %d accepted (+%d notes)\n", result.names[r.userID], r.count, r.count*allitPoints)
	}
	b.sendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "🎭 Alliterations — Results",
		Description: sb.String(),
		Color:       nyxColor,
	})
}

// handleAllitCheck runs a phrase through the validator outside a round.
func (b *Bot) handleAllitCheck(m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		b.sendError(m.ChannelID, "Alliteration Check", "Usage: `"+b.Config.CommandPrefix+"allitcheck <letter> <phrase>`")
		return
	}
	letterArg := strings.ToLower(args[0])
	if len(letterArg) != 1 || letterArg[0] < 'a' || letterArg[0] > 'z' {
		b.sendError(m.ChannelID, "Alliteration Check", "The first argument must be a single letter.")
		return
	}
	phrase := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	verdict := "would **not** be accepted"
	if b.validateAlliteration(ctx, letterArg[0], phrase) {
		verdict = "would be accepted"
	}
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🎭 Alliteration Check",
		Description: fmt.Sprintf("“%s” %s for **%s**.", truncate(phrase, 200), verdict, strings.ToUpper(letterArg)),
		Color:       nyxColor,
	})
}
