// Command liftmonitor prints the lamp panel of one or more lifts started
// with -monitor.
package main

import (
	"context"
	"flag"
	"strings"

	"github.com/rs/zerolog"

	"liftsim/lifecycle"
	"liftsim/logger"
	"liftsim/network"
)

func main() {
	addr := flag.String("listen", network.DEFAULT_MONITOR_PORT, "UDP address to accept panel streams on")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := logger.GetLoggerConfigured(level)

	r, err := network.Listen(*addr)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot listen")
	}
	log.Info().Str("addr", r.Addr()).Msg("waiting for lifts")

	ctx, stop := lifecycle.Signals(context.Background())
	defer stop()

	frames := make(chan network.MsgPanel, 64)
	go func() {
		if err := r.Serve(ctx, frames); err != nil {
			log.Error().Err(err).Msg("receiver stopped")
			stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor stopped")
			return
		case msg := <-frames:
			p := msg.Content
			log.Info().
				Str("lift", p.Host+"/"+p.Session.String()[:8]).
				Uint64("seq", p.Seq).
				Int("floor", p.Floor()).
				Msg(render(p))
		}
	}
}

// render draws the panel as "dir[...] pos[...] ack[...]".
func render(p network.Panel) string {
	var b strings.Builder
	row := func(name string, lamps []bool, on byte) {
		b.WriteString(name)
		b.WriteByte('[')
		for _, lit := range lamps {
			if lit {
				b.WriteByte(on)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("] ")
	}
	row("dir", p.Direction, '=')
	row("pos", p.Position, '#')
	row("ack", p.Ack, '*')
	return strings.TrimSpace(b.String())
}
