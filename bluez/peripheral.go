package bluez

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	gatt "github.com/XC-/bluezgatt"
)

// A Peripheral registers a gatt application and its advertisements
// with a BlueZ adapter.
type Peripheral struct {
	conn    Conn
	loop    Loop
	app     *gatt.Application
	name    string
	timeout time.Duration
	log     logrus.FieldLogger
	adapter dbus.ObjectPath
	exp     *exporter
}

// NewPeripheral returns a Peripheral for app. Registration replies are
// handled on loop, and a failed registration quits it.
func NewPeripheral(c Conn, loop Loop, app *gatt.Application, opts ...Option) *Peripheral {
	p := &Peripheral{
		conn: c,
		loop: loop,
		app:  app,
		log:  app.Logger(),
	}
	p.Option(opts...)
	return p
}

// Adapter returns the adapter chosen by Start.
func (p *Peripheral) Adapter() dbus.ObjectPath { return p.adapter }

// Start finds and powers the adapter, exports the application and its
// advertisements, and requests their registration. Start returns once the
// requests are sent; the replies arrive on the loop. Start must be called
// before the loop runs, or from the loop.
func (p *Peripheral) Start() error {
	adapter, err := FindAdapter(p.conn, p.name)
	if err != nil {
		return err
	}
	p.adapter = adapter
	log := p.log.WithField("adapter", adapter)
	if err := SetPowered(p.conn, adapter, true); err != nil {
		return err
	}

	p.exp = &exporter{conn: p.conn, loop: p.loop, log: p.log}
	if err := p.exp.exportApplication(p.app); err != nil {
		return fmt.Errorf("export application: %w", err)
	}
	for _, adv := range p.app.Advertisements() {
		if err := p.exp.exportAdvertisement(adv); err != nil {
			return fmt.Errorf("export advertisement: %w", err)
		}
		if _, _, fit := adv.Packets(); len(fit) < len(adv.ServiceUUIDs) {
			log.WithField("path", adv.Path()).Warnf("Only %d of %d service UUIDs fit in the advertising packet", len(fit), len(adv.ServiceUUIDs))
		}
	}
	p.app.Freeze()

	opts := map[string]dbus.Variant{}
	call := p.conn.Go(BusName, adapter, gattManagerInterface+".RegisterApplication", p.app.Path(), opts)
	go p.await(call, "application", "GATT application registered")
	for _, adv := range p.app.Advertisements() {
		call := p.conn.Go(BusName, adapter, advManagerInterface+".RegisterAdvertisement", adv.Path(), opts)
		go p.await(call, "advertisement", "Advertisement registered")
	}
	log.Info("Registration requested")
	return nil
}

// await waits for a registration reply and reports it on the loop.
func (p *Peripheral) await(call *dbus.Call, what, registered string) {
	var timeout <-chan time.Time
	if p.timeout > 0 {
		t := time.NewTimer(p.timeout)
		defer t.Stop()
		timeout = t.C
	}
	var err error
	select {
	case c := <-call.Done:
		err = c.Err
	case <-timeout:
		err = fmt.Errorf("no reply after %s", p.timeout)
	}
	p.loop.Post(func() {
		if err != nil {
			p.log.WithError(err).Errorf("Failed to register %s", what)
			p.loop.Quit(fmt.Errorf("register %s: %w", what, err))
			return
		}
		p.log.Info(registered)
	})
}

// Stop unregisters the advertisements and the application.
// Errors are logged; the first one is returned.
func (p *Peripheral) Stop() error {
	if p.adapter == "" {
		return nil
	}
	var first error
	report := func(call *dbus.Call, what string) {
		if call.Err == nil {
			return
		}
		p.log.WithError(call.Err).Warnf("Failed to unregister %s", what)
		if first == nil {
			first = fmt.Errorf("unregister %s: %w", what, call.Err)
		}
	}
	for _, adv := range p.app.Advertisements() {
		report(p.conn.Call(BusName, p.adapter, advManagerInterface+".UnregisterAdvertisement", adv.Path()), "advertisement")
	}
	report(p.conn.Call(BusName, p.adapter, gattManagerInterface+".UnregisterApplication", p.app.Path()), "application")
	return first
}

// An Option configures a Peripheral.
type Option func(*Peripheral) Option

// Option sets the options specified.
// It returns an option to restore the last arg's previous value.
func (p *Peripheral) Option(opts ...Option) (prev Option) {
	for _, opt := range opts {
		prev = opt(p)
	}
	return prev
}

// AdapterName selects the adapter by name, such as "hci1".
// The default is the first adapter found.
func AdapterName(name string) Option {
	return func(p *Peripheral) Option {
		prev := p.name
		p.name = name
		return AdapterName(prev)
	}
}

// RegisterTimeout bounds the wait for each registration reply.
// Zero, the default, waits indefinitely.
func RegisterTimeout(d time.Duration) Option {
	return func(p *Peripheral) Option {
		prev := p.timeout
		p.timeout = d
		return RegisterTimeout(prev)
	}
}

// Logger sets the peripheral's logger. The default is the application's.
func Logger(l logrus.FieldLogger) Option {
	return func(p *Peripheral) Option {
		prev := p.log
		p.log = l
		return Logger(prev)
	}
}
