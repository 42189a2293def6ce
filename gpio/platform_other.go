//go:build !linux

package gpio

import "github.com/pkg/errors"

func openPlatform(name string, opts Options) (Chip, error) {
	switch name {
	case BackendSysfs, "", BackendCdev, BackendRpio:
		return nil, errors.Errorf("gpio: backend %q needs linux", name)
	}
	return nil, errors.Errorf("gpio: unknown backend %q", name)
}
