package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xtaci/kcp-go"

	"liftsim/lights"
	"liftsim/logger"
)

var Log = logger.GetLogger()

// Publisher mirrors the lamp panel to a remote monitor. Frames are queued
// without blocking; when the queue is full the frame is dropped, so the lift
// never waits on the network.
type Publisher struct {
	sess    *kcp.UDPSession
	session uuid.UUID
	host    string

	mu     sync.Mutex
	seq    uint64
	closed bool
	out    chan MsgPanel
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewPublisher(addr string) (*Publisher, error) {
	sess, err := kcp.DialWithOptions(addr, nil, dataShards, parityShards)
	if err != nil {
		return nil, errors.Wrapf(err, "dial monitor %s", addr)
	}
	sess.SetStreamMode(true)
	sess.SetNoDelay(1, 10, 2, 1)

	host, err := LocalIP()
	if err != nil {
		host = "unknown"
	}

	p := &Publisher{
		sess:    sess,
		session: uuid.New(),
		host:    host,
		out:     make(chan MsgPanel, publishQueue),
		done:    make(chan struct{}),
	}
	p.wg.Add(1)
	go p.transmit()
	return p, nil
}

func (p *Publisher) Session() uuid.UUID {
	return p.session
}

// Attach publishes a frame after every lamp change on bank.
func (p *Publisher) Attach(bank *lights.Bank) {
	bank.Observe(func(lights.Change) {
		p.Publish(bank.Snapshot())
	})
}

func (p *Publisher) Publish(s lights.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.seq++
	msg := MsgPanel{
		Type: TypePanel,
		Content: Panel{
			Session:   p.session,
			Host:      p.host,
			Seq:       p.seq,
			Sent:      time.Now(),
			Direction: s.Direction,
			Position:  s.Position,
			Ack:       s.Ack,
		},
	}

	select {
	case p.out <- msg:
	default:
		Log.Debug().Uint64("seq", p.seq).Msg("monitor queue full, frame dropped")
	}
}

func (p *Publisher) transmit() {
	defer p.wg.Done()
	enc := json.NewEncoder(p.sess)

	for {
		select {
		case <-p.done:
			return
		case msg := <-p.out:
			if err := enc.Encode(msg); err != nil {
				Log.Debug().Err(err).Msg("monitor send failed")
			}
		}
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	return p.sess.Close()
}
