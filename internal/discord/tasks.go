package discord

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/snapshot"
)

const (
	nudgeInterval     = 30 * time.Minute
	nudgeThreshold    = 24 * time.Hour
	nudgePoints       = 15
	nudgeStateFile    = "nudge_state.json"
	nudgeRotationFile = "nudge_rotation.json"
	moodDataFile      = "mood_data.json"
)

var nudgeMessages = []string{
	"Good day, wanderers! How is everyone feeling? React below and tell me. 🌿",
	"Nyx pokes her head out of the hollow tree. Check-in time! How are we doing?",
	"The forest wants to know how you're holding up today. React with your mood!",
	"Psst. It's been a while. How's your heart today?",
	"Daily roll call from your favorite forest spirit — pick the face that fits!",
	"Nyx lights the lanterns and waits. How is everyone feeling tonight?",
	"A gentle tap on the shoulder from Nyx: how are you, really?",
	"The moths delivered a message: it's mood check time! 🦋",
}

// moodReactions maps each check-in emoji to its mood label.
var moodReactions = []struct {
	Emoji string
	Label string
}{
	{"😊", "happy"},
	{"😐", "okay"},
	{"😔", "sad"},
	{"😡", "angry"},
	{"😴", "tired"},
	{"😰", "anxious"},
}

type nudgeState struct {
	LastNudge time.Time `json:"last_nudge"`
	MessageID string    `json:"message_id"`
	ChannelID string    `json:"channel_id"`
}

type moodRecord struct {
	Counts    map[string]int `json:"counts"`
	LastAward string         `json:"last_award"` // day bucket of the last payout
}

// nudgeLoop posts a check-in message when the channel has gone quiet
// for the threshold. Runs until Stop.
func (b *Bot) nudgeLoop() {
	defer b.wg.Done()
	if b.Config.CheckInChannelID == "" {
		b.logger.Info("check-in channel not configured, nudge loop idle")
		return
	}

	ticker := time.NewTicker(nudgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.maybeNudge()
		case <-b.stop:
			return
		}
	}
}

func (b *Bot) maybeNudge() {
	b.stateMu.Lock()
	var state nudgeState
	if err := snapshot.Load(b.statePath(nudgeStateFile), &state); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading nudge state", "error", err)
	}
	due := time.Since(state.LastNudge) >= nudgeThreshold
	b.stateMu.Unlock()

	if due {
		b.sendNudge()
	}
}

// sendNudge posts the next check-in message with its mood reactions and
// records it as the live check-in.
func (b *Bot) sendNudge() {
	b.stateMu.Lock()
	text := nudgeMessages[b.nextRotation(b.statePath(nudgeRotationFile), len(nudgeMessages))]
	b.stateMu.Unlock()

	msg := b.sendEmbed(b.Config.CheckInChannelID, &discordgo.MessageEmbed{
		Title:       "🌿 Daily Check-In",
		Description: text + fmt.Sprintf("\n\nReacting earns **%d** notes, once a day.", nudgePoints),
		Color:       nyxColor,
	})
	if msg == nil {
		return
	}
	for _, mood := range moodReactions {
		b.react(msg.ChannelID, msg.ID, mood.Emoji)
	}

	b.stateMu.Lock()
	state := nudgeState{LastNudge: time.Now(), MessageID: msg.ID, ChannelID: msg.ChannelID}
	if err := snapshot.Save(b.statePath(nudgeStateFile), &state); err != nil {
		b.logger.Error("error saving nudge state", "error", err)
	}
	b.stateMu.Unlock()

	b.logger.Info("posted check-in nudge", "channel", msg.ChannelID)
}

// handleMoodReaction awards check-in notes for mood reactions on the
// live nudge message.
func (b *Bot) handleMoodReaction(r *discordgo.MessageReactionAdd) {
	label := ""
	for _, mood := range moodReactions {
		if mood.Emoji == r.Emoji.Name {
			label = mood.Label
			break
		}
	}
	if label == "" {
		return
	}

	b.stateMu.Lock()
	var state nudgeState
	if err := snapshot.Load(b.statePath(nudgeStateFile), &state); err != nil || state.MessageID != r.MessageID {
		b.stateMu.Unlock()
		return
	}

	moods := make(map[string]moodRecord)
	if err := snapshot.Load(b.statePath(moodDataFile), &moods); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading mood data", "error", err)
	}
	record := moods[r.UserID]
	if record.Counts == nil {
		record.Counts = make(map[string]int)
	}
	record.Counts[label]++

	today := dayKey(time.Now())
	awarded := record.LastAward != today
	if awarded {
		record.LastAward = today
	}
	moods[r.UserID] = record
	if err := snapshot.Save(b.statePath(moodDataFile), moods); err != nil {
		b.logger.Error("error saving mood data", "error", err)
	}
	b.stateMu.Unlock()

	if awarded {
		b.award(r.UserID, nudgePoints)
	}
}

// handleMoodStats shows a user's mood reaction history.
func (b *Bot) handleMoodStats(m *discordgo.MessageCreate, args []string) {
	target := m.Author
	if len(m.Mentions) > 0 {
		target = m.Mentions[0]
	}

	b.stateMu.Lock()
	moods := make(map[string]moodRecord)
	if err := snapshot.Load(b.statePath(moodDataFile), &moods); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading mood data", "error", err)
	}
	record, ok := moods[target.ID]
	b.stateMu.Unlock()

	if !ok || len(record.Counts) == 0 {
		b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title:       "🌿 Mood Stats",
			Description: fmt.Sprintf("No check-ins from %s yet. The forest misses them.", target.Username),
			Color:       nyxColor,
		})
		return
	}

	labels := make([]string, 0, len(record.Counts))
	for label := range record.Counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if record.Counts[labels[i]] != record.Counts[labels[j]] {
			return record.Counts[labels[i]] > record.Counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	var sb strings.Builder
	total := 0
	for _, label := range labels {
		emoji := ""
		for _, mood := range moodReactions {
			if mood.Label == label {
				emoji = mood.Emoji
			}
		}
		fmt.Fprintf(&sb, "%s %s — %d\n", emoji, label, record.Counts[label])
		total += record.Counts[label]
	}
	fmt.Fprintf(&sb, "\n**%d** check-ins in total.", total)

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🌿 Mood Stats — %s", target.Username),
		Description: sb.String(),
		Color:       nyxColor,
	})
}

// handleNudgeNow lets an administrator force a check-in immediately.
func (b *Bot) handleNudgeNow(m *discordgo.MessageCreate, args []string) {
	if !b.isAdmin(m) {
		b.sendError(m.ChannelID, "Nudge", "Only administrators can summon a check-in.")
		return
	}
	if b.Config.CheckInChannelID == "" {
		b.sendError(m.ChannelID, "Nudge", "No check-in channel is configured.")
		return
	}
	b.sendNudge()
}
