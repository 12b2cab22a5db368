package serialport

import (
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/recorder"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*recorder.Recorder, error) {
		cfg := do.MustInvoke[*config.RecorderConfig](i)
		writer := do.MustInvoke[audio.PCMWriter](i)
		return recorder.NewRecorder(cfg, NewOpener(), writer), nil
	})
}
