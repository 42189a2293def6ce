package logger

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

var waitGroup sync.WaitGroup

// Mirrors how every other package takes the logger during init.
var packageLog = GetLogger()

func loopGetLogger(t *testing.T, routineNum int) {
	defer waitGroup.Done()
	for i := 0; i < 1000; i++ {
		logger1 := GetLogger()
		if logger1 == nil {
			t.Errorf("GetLogger() = nil in goroutine %d, expected a non-nil logger", routineNum)
		}
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Errorf("GetLogger() = nil, expected a non-nil logger")
	}

	waitGroup.Add(2)
	go loopGetLogger(t, 1)
	go loopGetLogger(t, 2)
	waitGroup.Wait()

	if GetLogger() != GetLoggerConfigured(zerolog.DebugLevel) {
		t.Errorf("GetLoggerConfigured() returned a different logger than GetLogger()")
	}
}

func TestGetLoggerConfiguredSetsLevelAfterInit(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	GetLoggerConfigured(ParseLevel("info"))
	if packageLog.Debug().Enabled() {
		t.Error("debug enabled on an init-time logger after configuring info")
	}
	if !packageLog.Info().Enabled() {
		t.Error("info disabled on an init-time logger after configuring info")
	}

	GetLoggerConfigured(zerolog.Disabled)
	if packageLog.Error().Enabled() {
		t.Error("error enabled after configuring disabled")
	}

	GetLoggerConfigured(zerolog.DebugLevel)
	if !packageLog.Debug().Enabled() {
		t.Error("debug disabled after configuring debug")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
