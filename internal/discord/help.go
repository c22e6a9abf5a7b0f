package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// handleNyxHelp lists everything Nyx can do.
func (b *Bot) handleNyxHelp(m *discordgo.MessageCreate, args []string) {
	p := b.Config.CommandPrefix
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "🌙 Nyx — Commands",
		Description: "Hello! I'm Nyx. Here's everything I can do:",
		Color:       nyxColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🌿 Notes",
				Value: fmt.Sprintf("`%snyxnotes [@user]` — check a balance\n`%sleaderboard [n]` — top balances\n`%sgivepoints @user <n>` — grant notes (admin)", p, p, p),
			},
			{
				Name: "🎮 Games",
				Value: fmt.Sprintf(
					"`%sprefixgame` — race to find words for a prefix\n"+
						"`%sunscramble` — three rounds of scrambled words (`%shint`, `%sreveal`, `%sendunscramble`)\n"+
						"`%seasywordhunt` / `%shardwordhunt` — find words in a grid (`%seasyhint`, `%seasyreveal`, ...)\n"+
						"`%salliterations` — 30 seconds of alliteration (`%sallitcheck`, `%swordcheck` to settle arguments)",
					p, p, p, p, p, p, p, p, p, p, p, p),
			},
			{
				Name: "💬 Chat",
				Value: fmt.Sprintf(
					"`%sdmcomfort` — a private comfort chat in your DMs (`%sendcomfort`)\n"+
						"`%sasylumchat [mode]` — Nyx takes over the channel (`%sendasylumchat`)\n"+
						"`%sasknyx <question>` — one question, one answer",
					p, p, p, p, p),
			},
			{
				Name: "📜 Workshop & Check-ins",
				Value: fmt.Sprintf(
					"`%smonday`/`%stuesday`/`%sthursday`/`%sfriday <text>` — submit weekday writing\n"+
						"`%sweekend` — draw a weekend prompt, `%sweekendsubmit <text>` to answer it\n"+
						"`%smoodstats [@user]` — your check-in history",
					p, p, p, p, p, p, p),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Earn notes by playing, writing, and checking in. 🌙"},
	})
}
