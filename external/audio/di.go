package audio

import (
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*WAVFile, error) {
		return NewWAVFile(), nil
	})
	do.Provide(injector, func(i do.Injector) (audio.PCMWriter, error) {
		return do.MustInvoke[*WAVFile](i), nil
	})
	do.Provide(injector, func(i do.Injector) (audio.SampleReader, error) {
		return do.MustInvoke[*WAVFile](i), nil
	})
	do.Provide(injector, func(i do.Injector) (*FFmpegConverter, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewFFmpegConverter(c.FFmpegPath), nil
	})
	do.Provide(injector, func(i do.Injector) (*audio.Preparer, error) {
		c := do.MustInvoke[*config.Config](i)
		wav := do.MustInvoke[*WAVFile](i)
		ffmpeg := do.MustInvoke[*FFmpegConverter](i)
		return audio.NewPreparer(wav, ffmpeg, NewOpusDecoder(c.OpusChannels, wav)), nil
	})
}
