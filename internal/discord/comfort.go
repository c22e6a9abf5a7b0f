package discord

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/session"
	"github.com/girlyearning/nyx/internal/snapshot"
)

const (
	comfortNamespace   = "comfort"
	comfortTurnCap     = 25
	comfortPrimeTurns  = 10
	comfortHistoryFile = "comfort_history.json"
)

type comfortMode struct {
	Name        string
	Blurb       string
	Prompt      string
	Temperature float32
}

var comfortModes = []comfortMode{
	{
		Name:        "Venting",
		Blurb:       "let it all out, I'll just listen",
		Prompt:      "You are Nyx, a gentle, warm companion. The user needs to vent. Listen closely, validate their feelings, never lecture, never rush to solutions. Keep replies short and soft.",
		Temperature: 0.8,
	},
	{
		Name:        "Anxiety",
		Blurb:       "grounding when everything feels too loud",
		Prompt:      "You are Nyx, a calm, steady companion. The user is anxious. Offer grounding, slow breathing, and small reassurances. Short sentences. Never dismiss what they feel.",
		Temperature: 0.6,
	},
	{
		Name:        "Sadness",
		Blurb:       "company for the heavy days",
		Prompt:      "You are Nyx, a tender companion sitting with someone who is sad. Be present, be kind, acknowledge the weight of it. Do not force cheerfulness.",
		Temperature: 0.7,
	},
	{
		Name:        "Loneliness",
		Blurb:       "you're not as alone as it feels",
		Prompt:      "You are Nyx, a warm companion for someone feeling lonely. Be genuinely curious about them, ask gentle questions, remind them they matter.",
		Temperature: 0.8,
	},
	{
		Name:        "Encouragement",
		Blurb:       "a little push when you need one",
		Prompt:      "You are Nyx, an encouraging companion. The user needs a boost. Be specific and sincere in your encouragement, celebrate small wins, believe in them out loud.",
		Temperature: 0.9,
	},
	{
		Name:        "Distraction",
		Blurb:       "cozy chatter about anything else",
		Prompt:      "You are Nyx, a playful, cozy companion. The user wants distraction. Chat about gentle, curious things: odd facts, little stories, whimsical questions. Keep it light.",
		Temperature: 1.0,
	},
}

// comfortRecord is one finished session as persisted per user.
type comfortRecord struct {
	Mode      string         `json:"mode"`
	StartedAt time.Time      `json:"started_at"`
	Duration  int            `json:"duration_seconds"`
	EndReason string         `json:"end_reason"`
	Turns     []session.Turn `json:"turns"`
}

// comfortState rides in the session while it is live. The transcript is
// trimmed to a window, so user turns are counted separately for the
// session limit.
type comfortState struct {
	prime     []session.Turn // tail of the user's previous session
	userTurns int
}

// appendComfortUserTurn records one user message on a live session and
// reports whether the chat has reached its turn limit. Meant to run
// inside a registry update.
func appendComfortUserTurn(sess *session.Session, userID, content string) (capped bool) {
	sess.AppendTurn(session.UserTurn(userID, content), comfortTurnCap)
	state, ok := sess.Data.(*comfortState)
	if !ok {
		return false
	}
	state.userTurns++
	return state.userTurns >= comfortTurnCap
}

// handleDMComfort opens a DM and walks the user through mode selection.
func (b *Bot) handleDMComfort(m *discordgo.MessageCreate, args []string) {
	dmID, err := b.dmChannel(m.Author.ID)
	if err != nil {
		b.logger.Error("error opening comfort DM", "user", m.Author.ID, "error", err)
		b.sendError(m.ChannelID, "DM Comfort", "I couldn't open a DM with you — maybe your DMs are closed?")
		return
	}

	key := session.Key(comfortNamespace, m.Author.ID)
	prime := b.comfortPrime(m.Author.ID)
	_, err = b.Sessions.StartWith(key, comfortNamespace, session.StateSelecting, func(sess *session.Session) {
		sess.OwnerID = m.Author.ID
		sess.ChannelID = dmID
		sess.Data = &comfortState{prime: prime}
	})
	if err != nil {
		b.sendText(dmID, "We're already talking! Say `end chat` if you'd like to start over.")
		return
	}

	if m.GuildID != "" {
		b.sendText(m.ChannelID, "Check your DMs 💌")
	}
	b.sendEmbed(dmID, b.formatComfortMenu())
}

func (b *Bot) formatComfortMenu() *discordgo.MessageEmbed {
	var sb strings.Builder
	sb.WriteString("Hi, it's Nyx. 🌙 What do you need right now?\n\n")
	for i, mode := range comfortModes {
		fmt.Fprintf(&sb, "**%d.** %s — %s\n", i+1, mode.Name, mode.Blurb)
	}
	sb.WriteString("\nReply with a number, or `cancel` to slip back out.")
	return &discordgo.MessageEmbed{
		Title:       "🌙 Comfort Chat",
		Description: sb.String(),
		Color:       nyxColor,
	}
}

// comfortPrime returns the tail of the user's most recent session so a
// new chat can pick up where the last left off.
func (b *Bot) comfortPrime(userID string) []session.Turn {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	history := make(map[string][]comfortRecord)
	if err := snapshot.Load(b.statePath(comfortHistoryFile), &history); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("error loading comfort history", "error", err)
		}
		return nil
	}
	records := history[userID]
	if len(records) == 0 {
		return nil
	}
	turns := records[len(records)-1].Turns
	if len(turns) > comfortPrimeTurns {
		turns = turns[len(turns)-comfortPrimeTurns:]
	}
	return turns
}

// handleComfortMessage drives the DM state machine for non-command
// messages.
func (b *Bot) handleComfortMessage(m *discordgo.MessageCreate) {
	if m.GuildID != "" {
		return
	}
	key := session.Key(comfortNamespace, m.Author.ID)
	var state, channelID string
	if !b.Sessions.Update(key, func(sess *session.Session) {
		state = sess.State
		channelID = sess.ChannelID
	}) || channelID != m.ChannelID {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch state {
	case session.StateSelecting:
		b.comfortSelect(key, m, content)
	case session.StateActive:
		if strings.EqualFold(content, "end chat") {
			b.endComfortSession(key, "user")
			return
		}
		b.comfortReply(key, m, content)
	}
}

func (b *Bot) comfortSelect(key string, m *discordgo.MessageCreate, content string) {
	if strings.EqualFold(content, "cancel") {
		b.Sessions.End(key)
		b.sendText(m.ChannelID, "Okay. I'm here whenever you need me. 🌙")
		return
	}

	choice, err := strconv.Atoi(content)
	if err != nil || choice < 1 || choice > len(comfortModes) {
		b.sendText(m.ChannelID, fmt.Sprintf("Just a number between 1 and %d, or `cancel`.", len(comfortModes)))
		return
	}
	mode := comfortModes[choice-1]

	b.Sessions.Update(key, func(sess *session.Session) {
		sess.Mode = mode.Name
		sess.State = session.StateActive
	})
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🌙 " + mode.Name,
		Description: "I'm listening. Tell me what's on your mind.\nSay `end chat` whenever you're ready to stop.",
		Color:       nyxColor,
	})
}

func (b *Bot) comfortReply(key string, m *discordgo.MessageCreate, content string) {
	var mode comfortMode
	var history []session.Turn
	var capped bool
	b.Sessions.Update(key, func(sess *session.Session) {
		for _, cm := range comfortModes {
			if cm.Name == sess.Mode {
				mode = cm
			}
		}
		capped = appendComfortUserTurn(sess, m.Author.ID, content)
		if state, ok := sess.Data.(*comfortState); ok {
			history = append(history, state.prime...)
		}
		history = append(history, sess.Turns...)
	})

	reply := b.comfortResponse(mode, history)
	b.Sessions.Update(key, func(sess *session.Session) {
		sess.AppendTurn(session.BotTurn(reply), comfortTurnCap)
	})
	b.sendText(m.ChannelID, reply)

	if capped {
		b.endComfortSession(key, "turn-limit")
	}
}

func (b *Bot) comfortResponse(mode comfortMode, history []session.Turn) string {
	if b.AI == nil {
		return "I'm here with you. (My thinking-cap is off right now, but I'm still listening.) 🌙"
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.Config.AITimeout)
	defer cancel()
	reply, err := b.AI.Generate(ctx, Prompt{
		System:      mode.Prompt,
		Temperature: mode.Temperature,
		History:     history,
	})
	if err != nil {
		b.logger.Error("error generating comfort reply", "mode", mode.Name, "error", err)
		return "Mm, my thoughts scattered for a second. Say that again?"
	}
	return reply
}

// endComfortSession closes the session, persists the transcript and
// says goodbye.
func (b *Bot) endComfortSession(key, reason string) {
	sess, ok := b.Sessions.End(key)
	if !ok {
		return
	}

	record := comfortRecord{
		Mode:      sess.Mode,
		StartedAt: sess.StartedAt,
		Duration:  int(sess.Duration().Seconds()),
		EndReason: reason,
		Turns:     sess.Turns,
	}
	b.stateMu.Lock()
	history := make(map[string][]comfortRecord)
	if err := snapshot.Load(b.statePath(comfortHistoryFile), &history); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading comfort history", "error", err)
	}
	history[sess.OwnerID] = append(history[sess.OwnerID], record)
	if err := snapshot.Save(b.statePath(comfortHistoryFile), history); err != nil {
		b.logger.Error("error saving comfort history", "error", err)
	}
	b.stateMu.Unlock()

	goodbye := "Thank you for talking with me. Take care of yourself, okay? 🌙"
	if reason == "turn-limit" {
		goodbye = "We've talked a good long while — let's rest here. Come back any time. 🌙"
	}
	b.sendText(sess.ChannelID, goodbye)
}

// handleEndComfort ends the caller's comfort session from anywhere.
func (b *Bot) handleEndComfort(m *discordgo.MessageCreate, args []string) {
	key := session.Key(comfortNamespace, m.Author.ID)
	if _, ok := b.Sessions.Get(key); !ok {
		b.sendError(m.ChannelID, "Comfort Chat", "You don't have a comfort chat open.")
		return
	}
	b.endComfortSession(key, "user")
}
