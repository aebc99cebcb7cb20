package gatt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

// An Emitter broadcasts property changes of exported objects,
// as org.freedesktop.DBus.Properties.PropertiesChanged signals.
type Emitter interface {
	EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant, invalidated []string) error
}

// An Application is the root of a GATT object tree registered with BlueZ.
// It owns its services and advertisements. Once registered, the tree
// is frozen.
type Application struct {
	path     dbus.ObjectPath
	base     string
	services []*Service
	advs     []*Advertisement
	sched    Scheduler
	emitter  Emitter
	interval time.Duration
	log      logrus.FieldLogger
	frozen   bool
}

// NewApplication creates an Application whose notify ticks are armed on
// sched and whose value changes are published through em.
func NewApplication(sched Scheduler, em Emitter, opts ...Option) *Application {
	a := &Application{
		path:     "/",
		base:     DefaultBasePath,
		sched:    sched,
		emitter:  em,
		interval: DefaultNotifyInterval,
		log:      logrus.StandardLogger(),
	}
	a.Option(opts...)
	return a
}

// AddService attaches s to the application and assigns object paths to
// s and its characteristics and descriptors.
// GAP and GATT services are served by BlueZ and cannot be added.
func (a *Application) AddService(s *Service) error {
	if a.frozen {
		return errors.New("cannot add services after registration")
	}
	if s.app != nil {
		return fmt.Errorf("service %s already belongs to an application", s.uuid)
	}
	if uuidEqual(s.uuid, attrGAPUUID) || uuidEqual(s.uuid, attrGATTUUID) {
		return fmt.Errorf("service %s is provided by bluez", s.uuid)
	}
	for _, svc := range a.services {
		if uuidEqual(svc.uuid, s.uuid) {
			return fmt.Errorf("application already contains a service with uuid %s", s.uuid)
		}
	}
	s.attach(a, a.childPath("service", len(a.services)))
	a.services = append(a.services, s)
	return nil
}

// AddAdvertisement attaches adv to the application and assigns its path.
func (a *Application) AddAdvertisement(adv *Advertisement) error {
	if adv.path != "" {
		return errors.New("advertisement already has a path")
	}
	adv.path = a.childPath("advertisement", len(a.advs))
	a.advs = append(a.advs, adv)
	return nil
}

func (a *Application) childPath(kind string, i int) dbus.ObjectPath {
	return dbus.ObjectPath(strings.TrimSuffix(a.base, "/") + "/" + kind + strconv.Itoa(i))
}

// Path returns the application's object path.
func (a *Application) Path() dbus.ObjectPath { return a.path }

// Services returns the application's services, in order.
func (a *Application) Services() []*Service { return a.services }

// Advertisements returns the application's advertisements, in order.
func (a *Application) Advertisements() []*Advertisement { return a.advs }

// Logger returns the application's logger.
func (a *Application) Logger() logrus.FieldLogger { return a.log }

// Freeze marks the tree as registered; later additions fail.
func (a *Application) Freeze() { a.frozen = true }

// Frozen reports whether Freeze has been called.
func (a *Application) Frozen() bool { return a.frozen }

// An Option configures an Application.
type Option func(*Application) Option

// Option sets the options specified.
// It returns an option to restore the last arg's previous value.
// See http://commandcenter.blogspot.com.au/2014/01/self-referential-functions-and-design.html for more discussion.
func (a *Application) Option(opts ...Option) (prev Option) {
	for _, opt := range opts {
		prev = opt(a)
	}
	return prev
}

// BasePath sets the prefix of service and advertisement object paths.
// BasePath cannot be used once services have been added.
func BasePath(p string) Option {
	return func(a *Application) Option {
		if len(a.services) > 0 || len(a.advs) > 0 {
			panic("cannot set base path after adding services")
		}
		prev := a.base
		a.base = p
		return BasePath(prev)
	}
}

// NotifyInterval sets the period of notify ticks for subscriptions
// started afterwards.
func NotifyInterval(d time.Duration) Option {
	return func(a *Application) Option {
		prev := a.interval
		a.interval = d
		return NotifyInterval(prev)
	}
}

// Logger sets the logger used by the application's entities.
func Logger(l logrus.FieldLogger) Option {
	return func(a *Application) Option {
		prev := a.log
		a.log = l
		return Logger(prev)
	}
}
