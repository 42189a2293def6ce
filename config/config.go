package config

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"liftsim/elevio"
	"liftsim/gpio"
)

// BeagleBone Black pin numbers of the lift simulation board, (bank * 32) + offset.
const (
	LED_1  = (0 * 32) + 3
	LED_2  = (0 * 32) + 23
	LED_3  = (0 * 32) + 2
	LED_4  = (0 * 32) + 26
	LED_5  = (1 * 32) + 17
	LED_6  = (1 * 32) + 15
	LED_7  = (0 * 32) + 15
	LED_8  = (1 * 32) + 14
	LED_9  = (0 * 32) + 30
	LED_10 = (2 * 32) + 2
	LED_11 = (1 * 32) + 28
	LED_12 = (2 * 32) + 3
	LED_13 = (0 * 32) + 31
	LED_14 = (2 * 32) + 5
	LED_15 = (1 * 32) + 18

	SW_1 = (0 * 32) + 14
	SW_2 = (0 * 32) + 27
	SW_3 = (0 * 32) + 22
	SW_4 = (2 * 32) + 1
)

const DEFAULT_LIFT_POS = 0

// FloorPins is the GPIO role triple of one floor.
type FloorPins struct {
	Button   gpio.Pin `yaml:"button"`
	Ack      gpio.Pin `yaml:"ack"`
	Position gpio.Pin `yaml:"position"`
}

type Timing struct {
	SweepStep    time.Duration `yaml:"sweep_step"`
	SweepPause   time.Duration `yaml:"sweep_pause"`
	FloorSettle  time.Duration `yaml:"floor_settle"`
	CallSettle   time.Duration `yaml:"call_settle"`
	ArrivalDwell time.Duration `yaml:"arrival_dwell"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

type Monitor struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Backend      string        `yaml:"backend"`
	SysfsDir     string        `yaml:"sysfs_dir"`
	Chip         string        `yaml:"chip"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
	DefaultFloor elevio.Floor  `yaml:"default_floor"`
	Floors       []FloorPins   `yaml:"floors"`
	Direction    []gpio.Pin    `yaml:"direction"`
	Timing       Timing        `yaml:"timing"`
	Monitor      Monitor       `yaml:"monitor"`
}

// Default is the reference lift: four floors, seven direction lamps and the
// board's original pin assignment.
func Default() Config {
	return Config{
		Backend:      gpio.BackendSysfs,
		SysfsDir:     gpio.DefaultSysfsDir,
		PollInterval: 10 * time.Millisecond,
		LogLevel:     "info",
		DefaultFloor: DEFAULT_LIFT_POS,
		Floors: []FloorPins{
			{Button: SW_1, Ack: LED_1, Position: LED_5},
			{Button: SW_2, Ack: LED_2, Position: LED_6},
			{Button: SW_3, Ack: LED_3, Position: LED_7},
			{Button: SW_4, Ack: LED_4, Position: LED_8},
		},
		Direction: []gpio.Pin{LED_9, LED_10, LED_11, LED_12, LED_13, LED_14, LED_15},
		Timing: Timing{
			SweepStep:    500 * time.Millisecond,
			SweepPause:   10 * time.Millisecond,
			FloorSettle:  500 * time.Millisecond,
			CallSettle:   1 * time.Second,
			ArrivalDwell: 1 * time.Second,
			RetryBackoff: 500 * time.Millisecond,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their reference values.
func Load(path string) (Config, error) {
	c := Default()
	file, err := os.Open(path)
	if err != nil {
		return c, errors.Wrap(err, "open config")
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil && err != io.EOF {
		return c, errors.Wrapf(err, "decode config %s", path)
	}
	return c, c.Validate()
}

func (c Config) NumFloors() int {
	return len(c.Floors)
}

func (c Config) Buttons() []gpio.Pin {
	return c.column(func(f FloorPins) gpio.Pin { return f.Button })
}

func (c Config) Acks() []gpio.Pin {
	return c.column(func(f FloorPins) gpio.Pin { return f.Ack })
}

func (c Config) Positions() []gpio.Pin {
	return c.column(func(f FloorPins) gpio.Pin { return f.Position })
}

func (c Config) column(pick func(FloorPins) gpio.Pin) []gpio.Pin {
	out := make([]gpio.Pin, len(c.Floors))
	for i, f := range c.Floors {
		out[i] = pick(f)
	}
	return out
}

// Validate rejects tables the controller cannot run on.
func (c Config) Validate() error {
	if len(c.Floors) < 2 {
		return errors.Errorf("config: need at least 2 floors, have %d", len(c.Floors))
	}
	if len(c.Direction) == 0 {
		return errors.New("config: no direction lamps")
	}
	if !c.DefaultFloor.Valid(len(c.Floors)) {
		return errors.Errorf("config: default floor %d outside [0, %d]", c.DefaultFloor, len(c.Floors)-1)
	}

	seen := make(map[gpio.Pin]string)
	claim := func(p gpio.Pin, role string) error {
		if prev, ok := seen[p]; ok {
			return errors.Errorf("config: pin %d used as both %s and %s", p, prev, role)
		}
		seen[p] = role
		return nil
	}
	for i, p := range c.Direction {
		if err := claim(p, "direction lamp "+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	for i, f := range c.Floors {
		for _, r := range []struct {
			pin  gpio.Pin
			role string
		}{
			{f.Button, "button " + strconv.Itoa(i)},
			{f.Ack, "ack lamp " + strconv.Itoa(i)},
			{f.Position, "position lamp " + strconv.Itoa(i)},
		} {
			if err := claim(r.pin, r.role); err != nil {
				return err
			}
		}
	}

	t := c.Timing
	for _, d := range []time.Duration{t.SweepStep, t.SweepPause, t.FloorSettle, t.CallSettle, t.ArrivalDwell, t.RetryBackoff} {
		if d < 0 {
			return errors.Errorf("config: negative delay %v", d)
		}
	}
	return nil
}
