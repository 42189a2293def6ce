//go:build linux

package gpio

import "github.com/pkg/errors"

func openPlatform(name string, opts Options) (Chip, error) {
	switch name {
	case BackendSysfs, "":
		return NewSysfs(opts.SysfsDir), nil
	case BackendCdev:
		return NewCdev(opts.Chip), nil
	case BackendRpio:
		r, err := NewRpio(opts.PollInterval)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, errors.Errorf("gpio: unknown backend %q", name)
}
