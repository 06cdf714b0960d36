package record

import (
	"sync/atomic"
	"time"
)

// Observer receives codec events. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveCompile(record string, d time.Duration, err error)
	ObserveDecode(record string, bytes int, d time.Duration, err error)
	ObserveEncode(record string, bytes int, d time.Duration, err error)
	ObserveValidation(record string, ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveCompile(string, time.Duration, error)     {}
func (nopObserver) ObserveDecode(string, int, time.Duration, error) {}
func (nopObserver) ObserveEncode(string, int, time.Duration, error) {}
func (nopObserver) ObserveValidation(string, bool)                  {}

type observerBox struct{ o Observer }

var observer atomic.Pointer[observerBox]

// SetObserver installs o for all records. Nil restores the no-op observer.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	observer.Store(&observerBox{o: o})
}

func currentObserver() Observer {
	if b := observer.Load(); b != nil {
		return b.o
	}
	return nopObserver{}
}
