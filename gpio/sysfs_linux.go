//go:build linux

package gpio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Sysfs drives lines through the legacy /sys/class/gpio interface.
type Sysfs struct {
	dir string
}

func NewSysfs(dir string) *Sysfs {
	return &Sysfs{dir: dir}
}

func (s *Sysfs) attr(h Handle, name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("gpio%d", h), name)
}

func (s *Sysfs) writeAttr(path, value string) error {
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return unavailable("sysfs: write %q to %s: %v", value, path, err)
	}
	return nil
}

// Acquire exports the pin. An already exported pin reports an error but the
// handle is still usable.
func (s *Sysfs) Acquire(pin Pin) (Handle, error) {
	return Handle(pin), s.writeAttr(filepath.Join(s.dir, "export"), strconv.Itoa(int(pin)))
}

func (s *Sysfs) Configure(h Handle, dir Direction, edge Edge) error {
	if err := s.writeAttr(s.attr(h, "direction"), DirectionToString(dir)); err != nil {
		return err
	}
	if dir == Out {
		return nil
	}
	return s.writeAttr(s.attr(h, "edge"), EdgeToString(edge))
}

func (s *Sysfs) Write(h Handle, level Level) error {
	return s.writeAttr(s.attr(h, "value"), strconv.Itoa(int(level)))
}

func (s *Sysfs) Read(h Handle) (Level, error) {
	b, err := os.ReadFile(s.attr(h, "value"))
	if err != nil {
		return Low, unavailable("sysfs: read gpio%d: %v", h, err)
	}
	if strings.TrimSpace(string(b)) == "1" {
		return High, nil
	}
	return Low, nil
}

func (s *Sysfs) Release(h Handle) error {
	return s.writeAttr(filepath.Join(s.dir, "unexport"), strconv.Itoa(int(h)))
}

func (s *Sysfs) Close() error {
	return nil
}

// Slice of epoll time between context checks.
const sysfsPollMs = 100

// WaitEdge opens every value file, consumes its current state and then waits
// for the kernel to flag a change with EPOLLPRI. Ready files are read again
// so the edge is acknowledged before they are closed.
func (s *Sysfs) WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, unavailable("sysfs: epoll_create1: %v", err)
	}
	defer unix.Close(epfd)

	byFd := make(map[int32]Handle, len(hs))
	defer func() {
		for fd := range byFd {
			unix.Close(int(fd))
		}
	}()

	var lastErr error
	for _, h := range hs {
		fd, err := unix.Open(s.attr(h, "value"), unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
		if err != nil {
			lastErr = err
			continue
		}
		drainValue(fd)

		ev := unix.EpollEvent{Events: unix.EPOLLPRI | unix.EPOLLERR, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			unix.Close(fd)
			lastErr = err
			continue
		}
		byFd[int32(fd)] = h
	}
	if len(byFd) == 0 {
		return nil, unavailable("sysfs: no button could be watched: %v", lastErr)
	}

	events := make([]unix.EpollEvent, len(byFd))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := unix.EpollWait(epfd, events, sysfsPollMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, unavailable("sysfs: epoll_wait: %v", err)
		}
		if n == 0 {
			continue
		}

		ready := make(map[Handle]bool, n)
		for _, ev := range events[:n] {
			drainValue(int(ev.Fd))
			ready[byFd[ev.Fd]] = true
		}
		return orderLike(hs, ready), nil
	}
}

func drainValue(fd int) {
	var buf [8]byte
	_, _ = unix.Pread(fd, buf[:], 0)
}
