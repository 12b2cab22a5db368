package discord

import (
	"github.com/foxseedlab/kikitori/internal/config"
	discordpkg "github.com/foxseedlab/kikitori/internal/discord"
	"github.com/samber/do/v2"
)

// RegisterDI provides the client only when DISCORD_TOKEN is set.
func RegisterDI(injector do.Injector) {
	cfg := do.MustInvoke[*config.Config](injector)
	if !cfg.DiscordEnabled() {
		return
	}
	do.Provide(injector, func(i do.Injector) (discordpkg.Client, error) {
		return NewClient(cfg.DiscordToken)
	})
}
