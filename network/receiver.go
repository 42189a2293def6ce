package network

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xtaci/kcp-go"
)

// Receiver accepts panel streams from any number of lifts.
type Receiver struct {
	ln *kcp.Listener
}

func Listen(addr string) (*Receiver, error) {
	ln, err := kcp.ListenWithOptions(addr, nil, dataShards, parityShards)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	return &Receiver{ln: ln}, nil
}

func (r *Receiver) Addr() string {
	return r.ln.Addr().String()
}

// Serve delivers every panel frame to out until ctx ends.
func (r *Receiver) Serve(ctx context.Context, out chan<- MsgPanel) error {
	go func() {
		<-ctx.Done()
		r.ln.Close()
	}()

	for {
		sess, err := r.ln.AcceptKCP()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		sess.SetStreamMode(true)
		sess.SetNoDelay(1, 10, 2, 1)
		Log.Info().Str("from", RemoteIP(sess)).Msg("lift connected")
		go r.handleSession(ctx, sess, out)
	}
}

func (r *Receiver) handleSession(ctx context.Context, sess *kcp.UDPSession, out chan<- MsgPanel) {
	defer sess.Close()
	go func() {
		<-ctx.Done()
		sess.Close()
	}()

	dec := json.NewDecoder(sess)
	for {
		var msg MsgPanel
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() == nil {
				Log.Debug().Err(err).Msg("panel stream ended")
			}
			return
		}
		if msg.Type != TypePanel {
			continue
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}
