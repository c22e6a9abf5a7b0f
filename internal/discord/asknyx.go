package discord

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/snapshot"
)

const (
	askNyxCooldown    = 30 * time.Second
	askNyxHistoryFile = "asknyx_history.json"
	askNyxPrompt      = "You are Nyx, a warm, whimsical forest-spirit of a Discord bot. Answer the user's question in character: kind, a little mischievous, concise. One short paragraph at most."
)

type askNyxEntry struct {
	UserID   string    `json:"user_id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	When     time.Time `json:"when"`
}

// handleAskNyx answers a one-shot question in the Nyx persona. No
// session, just a per-user cooldown.
func (b *Bot) handleAskNyx(m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.sendError(m.ChannelID, "Ask Nyx", "Ask me something! `"+b.Config.CommandPrefix+"asknyx <question>`")
		return
	}
	if b.onCooldown("asknyx:"+m.Author.ID, askNyxCooldown) {
		b.sendText(m.ChannelID, fmt.Sprintf("Patience, %s — one question every %d seconds.", displayName(m), int(askNyxCooldown.Seconds())))
		return
	}

	question := CleanMentions(strings.Join(args, " "), m.Mentions)
	answer := b.askNyxAnswer(question)

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🔮 Nyx ponders...",
		Description: answer,
		Color:       nyxColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: truncate(question, 200)},
	})
	b.appendAskNyxHistory(askNyxEntry{
		UserID:   m.Author.ID,
		Question: question,
		Answer:   answer,
		When:     time.Now(),
	})
}

func (b *Bot) askNyxAnswer(question string) string {
	if b.AI == nil {
		return "The stars are cloudy tonight — ask me again when my crystal ball is plugged in. 🔮"
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.Config.AITimeout)
	defer cancel()
	answer, err := b.AI.Generate(ctx, Prompt{
		System:      askNyxPrompt,
		Temperature: 0.9,
		Message:     question,
	})
	if err != nil {
		b.logger.Error("error generating asknyx answer", "error", err)
		return "Mm, the answer slipped through my fingers. Try once more?"
	}
	return answer
}

func (b *Bot) appendAskNyxHistory(entry askNyxEntry) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	var history []askNyxEntry
	if err := snapshot.Load(b.statePath(askNyxHistoryFile), &history); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading asknyx history", "error", err)
	}
	history = append(history, entry)
	if err := snapshot.Save(b.statePath(askNyxHistoryFile), history); err != nil {
		b.logger.Error("error saving asknyx history", "error", err)
	}
}
