package gatt

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeScheduler holds armed callbacks until fire is called.
type fakeScheduler struct {
	pending []func()
	delays  []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

// fire runs the callbacks armed so far, as one simulated tick,
// and returns how many ran.
func (s *fakeScheduler) fire() int {
	p := s.pending
	s.pending = nil
	for _, f := range p {
		f()
	}
	return len(p)
}

type emission struct {
	path        dbus.ObjectPath
	iface       string
	changed     map[string]dbus.Variant
	invalidated []string
}

type fakeEmitter struct {
	emitted []emission
	err     error
}

func (e *fakeEmitter) EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant, invalidated []string) error {
	e.emitted = append(e.emitted, emission{path, iface, changed, invalidated})
	return e.err
}

func newTestApplication(opts ...Option) (*Application, *fakeScheduler, *fakeEmitter, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	sched := &fakeScheduler{}
	em := &fakeEmitter{}
	app := NewApplication(sched, em, append([]Option{Logger(log)}, opts...)...)
	return app, sched, em, hook
}
