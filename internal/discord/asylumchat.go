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
	asylumNamespace    = "asylum"
	asylumHistoryFile  = "asylum_history.json"
	asylumTurnCap      = 40
	asylumContextTurns = 12
	asylumReplyCool    = 10 * time.Second
)

type asylumMode struct {
	Name        string
	Blurb       string
	Prompt      string
	Temperature float32
}

var asylumModes = []asylumMode{
	{
		Name:        "Nurse Nyx",
		Blurb:       "your doting, slightly unsettling ward nurse",
		Prompt:      "You are Nurse Nyx, the asylum ward's doting nurse. Sweet, attentive, a little eerie. You fuss over the patients in the channel, in character, always kind underneath.",
		Temperature: 0.9,
	},
	{
		Name:        "Best Friend",
		Blurb:       "ride-or-die bestie energy",
		Prompt:      "You are Nyx in best-friend mode. Warm, casual, teasing, completely on the user's side. Talk like a close friend in a group chat.",
		Temperature: 1.0,
	},
	{
		Name:        "Psych Analyst",
		Blurb:       "overly serious armchair analysis",
		Prompt:      "You are Nyx the resident psych analyst. You analyze everything anyone says with deadpan clinical seriousness, inventing absurdly specific diagnoses. Harmless and playful, never actually medical.",
		Temperature: 0.8,
	},
	{
		Name:        "Rage Debater",
		Blurb:       "will argue about anything, loudly",
		Prompt:      "You are Nyx in rage-debate mode. You passionately argue the opposite of whatever is said, with theatrical outrage and terrible logic. All bark, no genuine hostility.",
		Temperature: 1.1,
	},
}

type asylumRecord struct {
	Mode      string         `json:"mode"`
	StartedAt time.Time      `json:"started_at"`
	Duration  int            `json:"duration_seconds"`
	Turns     []session.Turn `json:"turns"`
}

// handleAsylumChat opens a channel-wide persona chat. An argument picks
// the mode directly; otherwise a menu asks for it.
func (b *Bot) handleAsylumChat(m *discordgo.MessageCreate, args []string) {
	if !b.asylumChannelAllowed(m.ChannelID) {
		b.sendError(m.ChannelID, "Asylum Chat", "Nyx only haunts the asylum channels.")
		return
	}

	key := session.Key(asylumNamespace, m.ChannelID)
	state := session.StateSelecting
	modeName := ""
	if len(args) > 0 {
		idx, err := strconv.Atoi(args[0])
		if err != nil || idx < 1 || idx > len(asylumModes) {
			b.sendError(m.ChannelID, "Asylum Chat", fmt.Sprintf("Pick a mode between 1 and %d, or give no argument for the menu.", len(asylumModes)))
			return
		}
		state = session.StateActive
		modeName = asylumModes[idx-1].Name
	}

	_, err := b.Sessions.StartWith(key, asylumNamespace, state, func(sess *session.Session) {
		sess.OwnerID = m.Author.ID
		sess.ChannelID = m.ChannelID
		sess.Mode = modeName
	})
	if err != nil {
		b.sendError(m.ChannelID, "Asylum Chat", "Nyx is already loose in this channel! `"+b.Config.CommandPrefix+"endasylumchat` to send her home.")
		return
	}

	if state == session.StateActive {
		b.announceAsylumMode(m.ChannelID, modeName)
		return
	}

	var sb strings.Builder
	sb.WriteString("Who should show up?\n\n")
	for i, mode := range asylumModes {
		fmt.Fprintf(&sb, "**%d.** %s — %s\n", i+1, mode.Name, mode.Blurb)
	}
	sb.WriteString("\nReply with a number.")
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🏥 Asylum Chat",
		Description: sb.String(),
		Color:       nyxColor,
	})
}

func (b *Bot) asylumChannelAllowed(channelID string) bool {
	if len(b.Config.AsylumChannelIDs) == 0 {
		return true
	}
	for _, id := range b.Config.AsylumChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

func (b *Bot) announceAsylumMode(channelID, modeName string) {
	b.sendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "🏥 " + modeName + " has entered the channel",
		Description: "Every message here reaches her now. `" + b.Config.CommandPrefix + "endasylumchat` when you've had enough.",
		Color:       nyxColor,
	})
}

// handleAsylumMessage feeds channel messages to the live persona.
func (b *Bot) handleAsylumMessage(m *discordgo.MessageCreate) {
	key := session.Key(asylumNamespace, m.ChannelID)
	var state string
	if !b.Sessions.Update(key, func(sess *session.Session) {
		state = sess.State
	}) {
		return
	}

	content := strings.TrimSpace(m.Content)
	if state == session.StateSelecting {
		b.asylumSelect(key, m, content)
		return
	}

	if b.onCooldown("asylum:"+m.Author.ID, asylumReplyCool) {
		return
	}

	var mode asylumMode
	var history []session.Turn
	b.Sessions.Update(key, func(sess *session.Session) {
		for _, am := range asylumModes {
			if am.Name == sess.Mode {
				mode = am
			}
		}
		sess.AppendTurn(session.UserTurn(m.Author.ID, displayName(m)+": "+content), asylumTurnCap)
		history = append(history, sess.Turns...)
	})
	if len(history) > asylumContextTurns {
		history = history[len(history)-asylumContextTurns:]
	}

	reply := b.asylumResponse(mode, history)
	if reply == "" {
		return
	}
	b.Sessions.Update(key, func(sess *session.Session) {
		sess.AppendTurn(session.BotTurn(reply), asylumTurnCap)
	})
	b.sendText(m.ChannelID, reply)
}

func (b *Bot) asylumSelect(key string, m *discordgo.MessageCreate, content string) {
	choice, err := strconv.Atoi(content)
	if err != nil || choice < 1 || choice > len(asylumModes) {
		return
	}
	mode := asylumModes[choice-1]
	b.Sessions.Update(key, func(sess *session.Session) {
		sess.Mode = mode.Name
		sess.State = session.StateActive
	})
	b.announceAsylumMode(m.ChannelID, mode.Name)
}

func (b *Bot) asylumResponse(mode asylumMode, history []session.Turn) string {
	if b.AI == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.Config.AITimeout)
	defer cancel()
	reply, err := b.AI.Generate(ctx, Prompt{
		System:      mode.Prompt,
		Temperature: mode.Temperature,
		History:     history,
	})
	if err != nil {
		b.logger.Error("error generating asylum reply", "mode", mode.Name, "error", err)
		return ""
	}
	return reply
}

// endAsylumSession closes the channel session and persists the
// transcript.
func (b *Bot) endAsylumSession(key, reason string) {
	sess, ok := b.Sessions.End(key)
	if !ok {
		return
	}

	record := asylumRecord{
		Mode:      sess.Mode,
		StartedAt: sess.StartedAt,
		Duration:  int(sess.Duration().Seconds()),
		Turns:     sess.Turns,
	}
	b.stateMu.Lock()
	history := make(map[string][]asylumRecord)
	if err := snapshot.Load(b.statePath(asylumHistoryFile), &history); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading asylum history", "error", err)
	}
	history[sess.ChannelID] = append(history[sess.ChannelID], record)
	if err := snapshot.Save(b.statePath(asylumHistoryFile), history); err != nil {
		b.logger.Error("error saving asylum history", "error", err)
	}
	b.stateMu.Unlock()

	if reason == "shutdown" {
		b.sendText(sess.ChannelID, "Nyx drifts back into the walls. 🏥")
	} else {
		b.sendText(sess.ChannelID, "Visiting hours are over. Nyx waves goodbye. 🏥")
	}
}

// handleEndAsylumChat ends the channel's persona chat.
func (b *Bot) handleEndAsylumChat(m *discordgo.MessageCreate, args []string) {
	key := session.Key(asylumNamespace, m.ChannelID)
	if _, ok := b.Sessions.Get(key); !ok {
		b.sendError(m.ChannelID, "Asylum Chat", "Nyx isn't haunting this channel right now.")
		return
	}
	b.endAsylumSession(key, "user")
}
