package voiceprint

import (
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.VoiceprintConfig](i)
		reader := do.MustInvoke[audio.SampleReader](i)
		return NewService(reader, cfg.MFCCCount, cfg.Epochs), nil
	})
}
