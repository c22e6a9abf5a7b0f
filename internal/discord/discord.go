package discord

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/ledger"
	"github.com/girlyearning/nyx/internal/session"
	"github.com/girlyearning/nyx/internal/wordlist"
)

// NewBot creates the Nyx bot with the provided configuration
func NewBot(config *Config, logger *slog.Logger) (*Bot, error) {
	sess, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	sess.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	if logger == nil {
		logger = slog.Default()
	}

	bot := &Bot{
		Session:         sess,
		Config:          config,
		AI:              NewAIClient(config.OpenAIToken, config.OpenAIModel, config.MaxTokens),
		Notes:           ledger.NewStore(config.StorageDir, logger.With("component", "ledger")),
		Sessions:        session.NewRegistry(),
		Throttle:        NewThrottle(config.SendInterval),
		CommandHandlers: make(map[string]func(m *discordgo.MessageCreate, args []string)),
		collectors:      newCollectorHub(),
		logger:          logger.With("component", "bot"),
		commonWords:     wordlist.NewList(config.CommonWordsFile, logger.With("component", "wordlist")),
		dictionary:      wordlist.NewList(config.DictionaryFile, logger.With("component", "wordlist")),
		cooldowns:       make(map[string]time.Time),
		stop:            make(chan struct{}),
	}

	// Points and leaderboard
	bot.CommandHandlers["nyxnotes"] = bot.handleNyxNotes
	bot.CommandHandlers["leaderboard"] = bot.handleLeaderboard
	bot.CommandHandlers["givepoints"] = bot.handleGivePoints

	// Minigames
	bot.CommandHandlers["prefixgame"] = bot.handlePrefixGame
	bot.CommandHandlers["wordcheck"] = bot.handleWordCheck
	bot.CommandHandlers["unscramble"] = bot.handleUnscramble
	bot.CommandHandlers["hint"] = bot.handleUnscrambleHint
	bot.CommandHandlers["reveal"] = bot.handleUnscrambleReveal
	bot.CommandHandlers["endunscramble"] = bot.handleEndUnscramble
	bot.CommandHandlers["easywordhunt"] = bot.handleEasyWordHunt
	bot.CommandHandlers["hardwordhunt"] = bot.handleHardWordHunt
	bot.CommandHandlers["easyhint"] = bot.handleEasyHint
	bot.CommandHandlers["hardhint"] = bot.handleHardHint
	bot.CommandHandlers["easyreveal"] = bot.handleEasyReveal
	bot.CommandHandlers["hardreveal"] = bot.handleHardReveal
	bot.CommandHandlers["alliterations"] = bot.handleAlliterations
	bot.CommandHandlers["allitcheck"] = bot.handleAllitCheck

	// AI chat modes
	bot.CommandHandlers["dmcomfort"] = bot.handleDMComfort
	bot.CommandHandlers["endcomfort"] = bot.handleEndComfort
	bot.CommandHandlers["asylumchat"] = bot.handleAsylumChat
	bot.CommandHandlers["endasylumchat"] = bot.handleEndAsylumChat
	bot.CommandHandlers["asknyx"] = bot.handleAskNyx

	// Workshop and check-ins
	bot.CommandHandlers["monday"] = bot.handleWorkshopDay
	bot.CommandHandlers["tuesday"] = bot.handleWorkshopDay
	bot.CommandHandlers["thursday"] = bot.handleWorkshopDay
	bot.CommandHandlers["friday"] = bot.handleWorkshopDay
	bot.CommandHandlers["weekendsubmit"] = bot.handleWeekendSubmit
	bot.CommandHandlers["weekend"] = bot.handleWeekendPrompt
	bot.CommandHandlers["moodstats"] = bot.handleMoodStats
	bot.CommandHandlers["nudgenow"] = bot.handleNudgeNow

	bot.CommandHandlers["nyxhelp"] = bot.handleNyxHelp

	return bot, nil
}

// Start opens the gateway connection and launches background tasks
func (b *Bot) Start() error {
	user, err := b.Session.User("@me")
	if err != nil {
		return fmt.Errorf("error getting bot user: %w", err)
	}
	b.BotUserID = user.ID

	b.Session.AddHandler(b.messageCreate)
	b.Session.AddHandler(b.reactionAdd)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}

	b.wg.Add(1)
	go b.nudgeLoop()

	b.logger.Info("bot is running", "prefix", b.Config.CommandPrefix)
	return nil
}

// Stop ends active sessions, flushes the ledger and closes the gateway.
func (b *Bot) Stop() error {
	close(b.stop)
	b.wg.Wait()

	b.sweepSessions()

	if err := b.Notes.Flush(); err != nil {
		b.logger.Error("error flushing notes ledger", "error", err)
	}
	return b.Session.Close()
}

// sweepSessions tells every open chat session goodbye and persists its
// transcript, one farewell at a time through the throttle.
func (b *Bot) sweepSessions() {
	for _, key := range b.Sessions.Keys(comfortNamespace) {
		b.endComfortSession(key, "shutdown")
	}
	for _, key := range b.Sessions.Keys(asylumNamespace) {
		b.endAsylumSession(key, "shutdown")
	}
	for _, namespace := range []string{prefixNamespace, unscrambleNamespace, wordHuntNamespace, allitNamespace} {
		for _, key := range b.Sessions.Keys(namespace) {
			if sess, ok := b.Sessions.End(key); ok {
				b.sendText(sess.ChannelID, "Nyx is going to sleep — game cancelled. Your notes are safe. ✨")
			}
		}
	}
}

// messageCreate is the single gateway entry point: prefix commands go
// through the handler map, everything else feeds the game collectors
// and chat listeners.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if strings.HasPrefix(content, b.Config.CommandPrefix) {
		fields := strings.Fields(strings.TrimPrefix(content, b.Config.CommandPrefix))
		if len(fields) == 0 {
			return
		}
		name := strings.ToLower(fields[0])
		if handler, ok := b.CommandHandlers[name]; ok {
			handler(m, fields[1:])
		}
		return
	}

	b.collectors.dispatch(m)
	b.handleUnscrambleGuess(m)
	b.handleWordHuntGuess(m)
	b.handleComfortMessage(m)
	b.handleAsylumMessage(m)
}

// reactionAdd routes reaction events; only check-in mood reactions are
// of interest.
func (b *Bot) reactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == b.BotUserID {
		return
	}
	b.handleMoodReaction(r)
}

// onCooldown reports whether key fired within the last d, and stamps it
// if it did not.
func (b *Bot) onCooldown(key string, d time.Duration) bool {
	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()
	now := time.Now()
	if last, ok := b.cooldowns[key]; ok && now.Sub(last) < d {
		return true
	}
	b.cooldowns[key] = now
	return false
}

// statePath resolves a feature snapshot file inside the storage dir.
func (b *Bot) statePath(name string) string {
	return filepath.Join(b.Config.StorageDir, name)
}

// sendText sends a plain message through the throttle.
func (b *Bot) sendText(channelID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := b.Throttle.Wait(ctx); err != nil {
		return
	}
	if _, err := b.Session.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Error("error sending message", "channel", channelID, "error", err)
	}
}

// sendEmbed sends an embed through the throttle, falling back to the
// embed description as plain text when the send fails.
func (b *Bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) *discordgo.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := b.Throttle.Wait(ctx); err != nil {
		return nil
	}
	msg, err := b.Session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		b.logger.Error("error sending embed", "channel", channelID, "error", err)
		if embed.Description != "" {
			msg, _ = b.Session.ChannelMessageSend(channelID, embed.Description)
		}
	}
	return msg
}

// react adds a reaction through the throttle.
func (b *Bot) react(channelID, messageID, emoji string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := b.Throttle.Wait(ctx); err != nil {
		return
	}
	if err := b.Session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		b.logger.Error("error adding reaction", "channel", channelID, "error", err)
	}
}

// sendError sends a red error embed
func (b *Bot) sendError(channelID, title, description string) {
	b.sendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       errColor,
	})
}

// dmChannel opens (or reuses) the DM channel for a user.
func (b *Bot) dmChannel(userID string) (string, error) {
	ch, err := b.Session.UserChannelCreate(userID)
	if err != nil {
		return "", fmt.Errorf("error opening DM channel: %w", err)
	}
	return ch.ID, nil
}
