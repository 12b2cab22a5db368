package serialport

import (
	"fmt"
	"time"

	"github.com/foxseedlab/kikitori/internal/recorder"
	"go.bug.st/serial"
)

const defaultReadTimeout = time.Second

type Opener struct {
	readTimeout time.Duration
}

func NewOpener() *Opener {
	return &Opener{readTimeout: defaultReadTimeout}
}

// Open configures 8N1 framing. Reads return (0, nil) once the read timeout
// passes without data.
func (o *Opener) Open(name string, baudRate int) (recorder.Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(o.readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return p, nil
}

func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
