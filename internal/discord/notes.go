package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/ledger"
)

const (
	leaderboardDefault = 10
	leaderboardMax     = 20
)

// handleNyxNotes shows the caller's balance, or a mentioned user's.
func (b *Bot) handleNyxNotes(m *discordgo.MessageCreate, args []string) {
	target := m.Author
	if len(m.Mentions) > 0 {
		target = m.Mentions[0]
	}

	balance := b.Notes.Get(target.ID)
	who := "You have"
	if target.ID != m.Author.ID {
		who = fmt.Sprintf("%s has", target.Username)
	}
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🌿 Nyx Notes",
		Description: fmt.Sprintf("%s **%d** notes.", who, balance),
		Color:       nyxColor,
	})
}

// handleLeaderboard shows the top balances, medals for the first three.
func (b *Bot) handleLeaderboard(m *discordgo.MessageCreate, args []string) {
	n := leaderboardDefault
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			b.sendError(m.ChannelID, "Leaderboard", "Give me a number between 1 and 20.")
			return
		}
		n = parsed
		if n > leaderboardMax {
			n = leaderboardMax
		}
	}

	entries := b.Notes.TopN(n)
	if len(entries) == 0 {
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title:       "🏆 Nyx Notes Leaderboard",
			Description: "Nobody has earned any notes yet. Play a game!",
			Color:       nyxColor,
		})
		return
	}

	b.sendEmbed(m.ChannelID, b.formatLeaderboard(entries))
}

func (b *Bot) formatLeaderboard(entries []ledger.Entry) *discordgo.MessageEmbed {
	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&sb, "%s <@%s> — **%d** notes\n", rank, e.UserID, e.Notes)
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Nyx Notes Leaderboard",
		Description: sb.String(),
		Color:       nyxColor,
	}
}

// handleGivePoints grants (or removes, with a negative amount) notes.
// Admin only.
func (b *Bot) handleGivePoints(m *discordgo.MessageCreate, args []string) {
	if !b.isAdmin(m) {
		b.sendError(m.ChannelID, "Give Points", "Only administrators can hand out notes.")
		return
	}
	if len(m.Mentions) == 0 || len(args) < 2 {
		b.sendError(m.ChannelID, "Give Points", "Usage: `"+b.Config.CommandPrefix+"givepoints @user <amount>`")
		return
	}

	amount, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		b.sendError(m.ChannelID, "Give Points", "The amount must be a whole number.")
		return
	}

	target := m.Mentions[0]
	balance, err := b.Notes.Add(target.ID, amount)
	if errors.Is(err, ledger.ErrPersistence) {
		// Balance updated in memory; the snapshot write failed.
		b.logger.Error("givepoints persisted state is stale", "user", target.ID, "error", err)
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🌿 Nyx Notes",
		Description: fmt.Sprintf("<@%s> now has **%d** notes.", target.ID, balance),
		Color:       nyxColor,
	})
}

// award adds notes for a game result and logs persistence trouble
// without bothering the channel.
func (b *Bot) award(userID string, amount int) int {
	balance, err := b.Notes.Add(userID, amount)
	if err != nil {
		b.logger.Error("error persisting award", "user", userID, "amount", amount, "error", err)
	}
	return balance
}
