package conversion

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type releaseEntry struct {
	name string
	fn   func() error
}

// releaseList runs registered release functions in reverse order, exactly once.
// Errors and panics from release functions are logged and swallowed.
type releaseList struct {
	entries  []releaseEntry
	released bool
}

func (l *releaseList) add(name string, fn func() error) {
	l.entries = append(l.entries, releaseEntry{name: name, fn: fn})
}

func (l *releaseList) release(log logrus.FieldLogger) {
	if l.released {
		return
	}
	l.released = true

	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if err := safeCall(entry.fn); err != nil {
			log.WithError(err).WithField("resource", entry.name).Debug("cleanup failed")
		}
	}
	l.entries = nil
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during cleanup: %v", r)
		}
	}()
	return fn()
}
