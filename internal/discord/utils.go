package discord

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
)

// newRand seeds a fresh source; each game round gets its own so rounds
// never contend over a shared generator.
func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SetupCloseHandler creates a handler that will catch SIGINT and SIGTERM signals
// and gracefully close the application
func SetupCloseHandler(cleanupFunc func() error) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		err := cleanupFunc()
		if err != nil {
			fmt.Printf("Error during cleanup: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
}

// CleanMentions removes Discord mentions from a message
func CleanMentions(content string, mentions []*discordgo.User) string {
	for _, user := range mentions {
		content = strings.ReplaceAll(content, "<@"+user.ID+">", "")
		content = strings.ReplaceAll(content, "<@!"+user.ID+">", "")
	}
	return strings.TrimSpace(content)
}

// displayName picks the friendliest name Discord gives us for a message
// author.
func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// isAdmin reports whether the message author holds the administrator
// permission in the message's channel.
func (b *Bot) isAdmin(m *discordgo.MessageCreate) bool {
	perms, err := b.Session.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		b.logger.Error("error checking permissions", "user", m.Author.ID, "error", err)
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// dayKey formats a time as the per-day bucket used for daily awards.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// truncate shortens s to at most n runes for embed fields.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
