package discord

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/girlyearning/nyx/internal/ledger"
	"github.com/girlyearning/nyx/internal/session"
	"github.com/girlyearning/nyx/internal/wordlist"
)

// nyxColor is the persona's embed accent color.
const nyxColor = 0x76B887

const errColor = 0xFF0000

// Bot wires the Discord session to the notes ledger, the session
// registry and the AI client. Every command handler is a method on it.
type Bot struct {
	Session  *discordgo.Session
	Config   *Config
	AI       *AIClient
	Notes    *ledger.Store
	Sessions *session.Registry
	Throttle *Throttle

	BotUserID       string
	CommandHandlers map[string]func(m *discordgo.MessageCreate, args []string)

	collectors *collectorHub
	logger     *slog.Logger

	commonWords *wordlist.List
	dictionary  *wordlist.List

	// stateMu guards the feature snapshot files (histories, rotations,
	// mood data, workshop submissions). The ledger has its own lock.
	stateMu sync.Mutex

	cooldownMu sync.Mutex
	cooldowns  map[string]time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}
