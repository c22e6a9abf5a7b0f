package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testMessage(channelID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ChannelID: channelID,
			Content:   content,
			Author:    &discordgo.User{ID: "user-1"},
		},
	}
}

func TestDispatchRoutesByFilter(t *testing.T) {
	hub := newCollectorHub()
	c := hub.add(func(m *discordgo.MessageCreate) bool {
		return m.ChannelID == "chan-a"
	})
	defer hub.remove(c)

	hub.dispatch(testMessage("chan-a", "hello"))
	hub.dispatch(testMessage("chan-b", "ignored"))

	select {
	case m := <-c.ch:
		if m.Content != "hello" {
			t.Errorf("Expected 'hello', got %q", m.Content)
		}
	default:
		t.Fatal("Expected a collected message")
	}
	select {
	case m := <-c.ch:
		t.Errorf("Unexpected second message: %q", m.Content)
	default:
	}
}

func TestDispatchAfterRemoveIsDropped(t *testing.T) {
	hub := newCollectorHub()
	c := hub.add(func(m *discordgo.MessageCreate) bool { return true })
	hub.remove(c)

	hub.dispatch(testMessage("chan-a", "late"))

	select {
	case m := <-c.ch:
		t.Errorf("Removed collector received message: %q", m.Content)
	default:
	}
}

func TestDispatchFullCollectorDoesNotBlock(t *testing.T) {
	hub := newCollectorHub()
	c := hub.add(func(m *discordgo.MessageCreate) bool { return true })
	defer hub.remove(c)

	// Overfill past the buffer; dispatch must drop, not deadlock.
	for i := 0; i < 200; i++ {
		hub.dispatch(testMessage("chan-a", "spam"))
	}
	if got := len(c.ch); got != cap(c.ch) {
		t.Errorf("Expected buffer full at %d, got %d", cap(c.ch), got)
	}
}
