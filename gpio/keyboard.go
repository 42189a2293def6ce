package gpio

import (
	"os"

	"github.com/eiannone/keyboard"

	"liftsim/logger"
)

var Log = logger.GetLogger()

// Keyboard runs the lift on a desktop terminal. Lamps live in memory and are
// logged; digit keys press the call buttons.
type Keyboard struct {
	*Sim
	keys map[rune]Pin
	done chan struct{}
}

func NewKeyboard(keyPins []Pin) (*Keyboard, error) {
	events, err := keyboard.GetKeys(10)
	if err != nil {
		return nil, unavailable("keyboard: %v", err)
	}

	k := &Keyboard{
		Sim:  NewSim(),
		keys: make(map[rune]Pin, len(keyPins)),
		done: make(chan struct{}),
	}
	for i, p := range keyPins {
		if i > 9 {
			break
		}
		k.keys[rune('0'+i)] = p
	}

	go k.listen(events)
	return k, nil
}

func (k *Keyboard) listen(events <-chan keyboard.KeyEvent) {
	for {
		select {
		case <-k.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				Log.Debug().Err(ev.Err).Msg("keyboard read failed")
				continue
			}
			if ev.Key == keyboard.KeyCtrlC {
				// The terminal is in raw mode, so the kernel will not turn
				// Ctrl-C into a signal for us.
				if p, err := os.FindProcess(os.Getpid()); err == nil {
					_ = p.Signal(os.Interrupt)
				}
				continue
			}
			if pin, ok := k.keys[ev.Rune]; ok {
				k.Pulse(pin)
			}
		}
	}
}

func (k *Keyboard) Write(h Handle, level Level) error {
	if err := k.Sim.Write(h, level); err != nil {
		return err
	}
	Log.Info().Int("pin", int(h)).Str("lamp", lampState(level)).Msg("lamp")
	return nil
}

func (k *Keyboard) Close() error {
	select {
	case <-k.done:
		return nil
	default:
	}
	close(k.done)
	if err := keyboard.Close(); err != nil {
		return unavailable("keyboard: %v", err)
	}
	return nil
}

func lampState(level Level) string {
	if level == High {
		return "on"
	}
	return "off"
}
