package discord

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/snapshot"
)

const (
	workshopPoints        = 20
	workshopFile          = "workshop_submissions.json"
	workshopPromptsFile   = "workshop_prompt_rotation.json"
	workshopSubmissionMax = 4000
)

var weekendPrompts = []string{
	"Write about a door that only opens for one person.",
	"Describe a place you've never been as if you grew up there.",
	"A letter arrives twenty years late. What does it say?",
	"Write the last page of a story that doesn't exist.",
	"Something small is lost and something enormous is found.",
	"Describe a color to someone who has never seen it.",
	"Two strangers share an umbrella for exactly one block.",
	"Write about the sound a house makes when it's empty.",
	"An ordinary object in your home is quietly magical.",
	"Write a conversation where nobody says what they mean.",
	"The town's lighthouse keeper has never seen the sea.",
	"Write about the first morning after everything changed.",
}

type workshopSubmission struct {
	Day     string    `json:"day"`
	Content string    `json:"content"`
	When    time.Time `json:"when"`
}

// handleWorkshopDay records a weekday writing submission, worth notes
// once per calendar day.
func (b *Bot) handleWorkshopDay(m *discordgo.MessageCreate, args []string) {
	b.recordWorkshopSubmission(m, args, "")
}

// handleWeekendSubmit records a weekend prompt response.
func (b *Bot) handleWeekendSubmit(m *discordgo.MessageCreate, args []string) {
	b.recordWorkshopSubmission(m, args, "weekend")
}

func (b *Bot) recordWorkshopSubmission(m *discordgo.MessageCreate, args []string, day string) {
	if b.Config.WorkshopChannelID != "" && m.ChannelID != b.Config.WorkshopChannelID {
		b.sendError(m.ChannelID, "Workshop", "Submissions belong in the workshop channel!")
		return
	}
	if len(args) == 0 {
		b.sendError(m.ChannelID, "Workshop", "Your submission seems to be empty — add your writing after the command.")
		return
	}

	// Recover the raw remainder so multi-line submissions survive.
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(m.Content), b.Config.CommandPrefix))
	command := strings.ToLower(fields[0])
	if day == "" {
		day = command
	}
	idx := strings.Index(m.Content, fields[0])
	content := strings.TrimSpace(m.Content[idx+len(fields[0]):])
	content = truncate(content, workshopSubmissionMax)

	submission := workshopSubmission{Day: day, Content: content, When: time.Now()}

	b.stateMu.Lock()
	submissions := make(map[string][]workshopSubmission)
	if err := snapshot.Load(b.statePath(workshopFile), &submissions); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading workshop submissions", "error", err)
	}
	today := dayKey(submission.When)
	alreadyToday := false
	for _, prior := range submissions[m.Author.ID] {
		if dayKey(prior.When) == today {
			alreadyToday = true
			break
		}
	}
	submissions[m.Author.ID] = append(submissions[m.Author.ID], submission)
	if err := snapshot.Save(b.statePath(workshopFile), submissions); err != nil {
		b.logger.Error("error saving workshop submissions", "error", err)
	}
	b.stateMu.Unlock()

	description := fmt.Sprintf("Thank you for your %s piece, %s! 📜", day, displayName(m))
	if alreadyToday {
		description += "\nYou've already earned today's workshop notes, but I kept this one safe too."
	} else {
		b.award(m.Author.ID, workshopPoints)
		description += fmt.Sprintf("\n**+%d notes** for showing up to write today.", workshopPoints)
	}
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "📜 Writing Workshop",
		Description: description,
		Color:       nyxColor,
	})
}

// handleWeekendPrompt draws the next prompt from the persisted
// rotation.
func (b *Bot) handleWeekendPrompt(m *discordgo.MessageCreate, args []string) {
	b.stateMu.Lock()
	prompt := weekendPrompts[b.nextRotation(b.statePath(workshopPromptsFile), len(weekendPrompts))]
	b.stateMu.Unlock()

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "📜 Weekend Writing Prompt",
		Description: fmt.Sprintf("%s\n\nAnswer with `%sweekendsubmit <your writing>` for **%d** notes.", prompt, b.Config.CommandPrefix, workshopPoints),
		Color:       nyxColor,
	})
}
