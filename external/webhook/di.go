package webhook

import (
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/webhook"
	"github.com/samber/do/v2"
)

// RegisterDI provides a webhook.Sender only when TRANSCRIPT_WEBHOOK_URL is set.
func RegisterDI(injector do.Injector) {
	cfg := do.MustInvoke[*config.Config](injector)
	if !cfg.WebhookEnabled() {
		return
	}
	do.ProvideValue[webhook.Sender](injector, NewJSONSender(cfg.TranscriptWebhookURL))
}
