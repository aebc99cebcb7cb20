package gatt

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/godbus/dbus/v5"
)

// A Request is the context for a request from a connected device.
type Request struct {
	Service        *Service
	Characteristic *Characteristic
	Device         dbus.ObjectPath // remote device, if BlueZ reported one
	Options        map[string]dbus.Variant
}

// A ReadRequest is a characteristic read request from a connected device.
type ReadRequest struct {
	Request
	Cap    int // maximum allowed reply length
	Offset int // request value offset
	MTU    int // negotiated ATT MTU, or 0 if unknown
}

// A WriteRequest is a characteristic write request from a connected device.
type WriteRequest struct {
	Request
	Offset int
	Type   string // "command", "request" or "reliable"; empty if unspecified
}

type ReadResponseWriter interface {
	// Write writes data to return as the characteristic value.
	Write([]byte) (int, error)
	// SetError fails the read; the error is returned to the central.
	SetError(error)
}

// A ReadHandler handles GATT read requests.
type ReadHandler interface {
	ServeRead(resp ReadResponseWriter, req *ReadRequest)
}

// ReadHandlerFunc is an adapter to allow the use of
// ordinary functions as ReadHandlers. If f is a function
// with the appropriate signature, ReadHandlerFunc(f) is a
// ReadHandler that calls f.
type ReadHandlerFunc func(resp ReadResponseWriter, req *ReadRequest)

// ServeRead returns f(r, maxlen, offset).
func (f ReadHandlerFunc) ServeRead(resp ReadResponseWriter, req *ReadRequest) {
	f(resp, req)
}

// A WriteHandler handles GATT write requests.
// Write and WriteWithoutResponse requests are presented identically.
// A non-nil error rejects the write and leaves the cached value untouched.
type WriteHandler interface {
	ServeWrite(r *WriteRequest, data []byte) error
}

// WriteHandlerFunc is an adapter to allow the use of
// ordinary functions as WriteHandlers. If f is a function
// with the appropriate signature, WriteHandlerFunc(f) is a
// WriteHandler that calls f.
type WriteHandlerFunc func(r *WriteRequest, data []byte) error

// ServeWrite returns f(r, data).
func (f WriteHandlerFunc) ServeWrite(r *WriteRequest, data []byte) error {
	return f(r, data)
}

// A NotifyHandler handles notification ticks. It is called once per
// notify interval while a central is subscribed, and publishes the fresh
// value by writing it to n.
type NotifyHandler interface {
	ServeNotify(r Request, n Notifier)
}

// NotifyHandlerFunc is an adapter to allow the use of
// ordinary functions as NotifyHandlers. If f is a function
// with the appropriate signature, NotifyHandlerFunc(f) is a
// NotifyHandler that calls f.
type NotifyHandlerFunc func(r Request, n Notifier)

// ServeNotify calls f(r, n).
func (f NotifyHandlerFunc) ServeNotify(r Request, n Notifier) {
	f(r, n)
}

// A Characteristic is a BLE characteristic.
type Characteristic struct {
	uuid     UUID
	flags    Flags
	value    []byte // cached value; refreshed on each read, write and notify
	descs    []*Descriptor
	rhandler ReadHandler
	whandler WriteHandler
	nhandler NotifyHandler

	notifying bool
	notifier  *notifier

	path    dbus.ObjectPath
	service *Service
}

// HandleRead makes the characteristic support read requests,
// and routes read requests to h. HandleRead must be called
// before the application is registered.
func (c *Characteristic) HandleRead(h ReadHandler) *Characteristic {
	c.flags |= FlagRead
	c.rhandler = h
	return c
}

// HandleReadFunc calls HandleRead(ReadHandlerFunc(f)).
func (c *Characteristic) HandleReadFunc(f func(resp ReadResponseWriter, req *ReadRequest)) *Characteristic {
	return c.HandleRead(ReadHandlerFunc(f))
}

// HandleWrite makes the characteristic support write requests,
// and routes write requests to h. HandleWrite must be called
// before the application is registered.
func (c *Characteristic) HandleWrite(h WriteHandler) *Characteristic {
	if !c.flags.Writable() {
		c.flags |= FlagWrite
	}
	c.whandler = h
	return c
}

// HandleWriteFunc calls HandleWrite(WriteHandlerFunc(f)).
func (c *Characteristic) HandleWriteFunc(f func(r *WriteRequest, data []byte) error) *Characteristic {
	return c.HandleWrite(WriteHandlerFunc(f))
}

// HandleNotify makes the characteristic support notify requests,
// and routes notification ticks to h. HandleNotify must be called
// before the application is registered.
func (c *Characteristic) HandleNotify(h NotifyHandler) *Characteristic {
	if !c.flags.Notifiable() {
		c.flags |= FlagNotify
	}
	c.nhandler = h
	return c
}

// HandleNotifyFunc calls HandleNotify(NotifyHandlerFunc(f)).
func (c *Characteristic) HandleNotifyFunc(f func(r Request, n Notifier)) *Characteristic {
	return c.HandleNotify(NotifyHandlerFunc(f))
}

// SetValue sets the cached value, served to reads when there is no ReadHandler.
func (c *Characteristic) SetValue(b []byte) *Characteristic {
	c.value = append([]byte{}, b...)
	return c
}

// AddDescriptor adds a descriptor to a characteristic.
// AddDescriptor panics if the characteristic already contains another
// descriptor with the same UUID, or if u is the Client Characteristic
// Configuration descriptor, which BlueZ manages itself.
func (c *Characteristic) AddDescriptor(u UUID, f Flags) *Descriptor {
	if uuidEqual(u, ClientCharacteristicConfigUUID) {
		panic("the client characteristic configuration descriptor is managed by bluez")
	}
	for _, d := range c.descs {
		if uuidEqual(d.uuid, u) {
			panic("characteristic already contains a descriptor with uuid " + u.String())
		}
	}
	c.checkMutable()
	d := &Descriptor{uuid: u, flags: f & (FlagRead | FlagWrite), char: c}
	c.descs = append(c.descs, d)
	if c.path != "" {
		d.attach(c.descPath(len(c.descs) - 1))
	}
	return d
}

// AddUserDescription adds a read-only Characteristic User Description
// descriptor holding label.
func (c *Characteristic) AddUserDescription(label string) *Descriptor {
	return c.AddDescriptor(UserDescriptionUUID, FlagRead).SetValue([]byte(label))
}

// UUID returns the characteristic's UUID
func (c *Characteristic) UUID() UUID { return c.uuid }

// Flags returns the characteristic's capability set.
func (c *Characteristic) Flags() Flags { return c.flags }

// Path returns the characteristic's object path, or "" before it is
// attached to an application.
func (c *Characteristic) Path() dbus.ObjectPath { return c.path }

// Service returns the service owning c.
func (c *Characteristic) Service() *Service { return c.service }

// Descriptors returns the characteristic's descriptors, in order.
func (c *Characteristic) Descriptors() []*Descriptor { return c.descs }

// Notifying reports whether a central is subscribed to c.
func (c *Characteristic) Notifying() bool { return c.notifying }

// Value returns a copy of the cached value.
func (c *Characteristic) Value() []byte { return append([]byte{}, c.value...) }

// ReadValue serves a read from a central and refreshes the cached value.
func (c *Characteristic) ReadValue(opts map[string]dbus.Variant) ([]byte, error) {
	if !c.flags.Has(FlagRead) {
		return nil, Errorf(NotPermitted, "characteristic %s is not readable", c.uuid)
	}
	req, err := c.readRequest(opts)
	if err != nil {
		return nil, err
	}
	v, err := c.read(req)
	if err != nil {
		return nil, err
	}
	c.value = v
	if req.Offset > len(v) {
		return nil, Errorf(InvalidArgs, "offset %d beyond value length %d", req.Offset, len(v))
	}
	return append([]byte{}, v[req.Offset:]...), nil
}

func (c *Characteristic) read(req *ReadRequest) ([]byte, error) {
	if c.rhandler == nil {
		return append([]byte{}, c.value...), nil
	}
	resp := newReadResponseWriter(req.Cap)
	c.rhandler.ServeRead(resp, req)
	if resp.err != nil {
		return nil, resp.err
	}
	return resp.bytes(), nil
}

// WriteValue serves a write from a central. It fails with NotPermitted
// unless c accepts writes, in which case the cached value is replaced.
func (c *Characteristic) WriteValue(value []byte, opts map[string]dbus.Variant) error {
	if !c.flags.Writable() {
		return Errorf(NotPermitted, "characteristic %s is not writable", c.uuid)
	}
	req, err := c.writeRequest(opts)
	if err != nil {
		return err
	}
	if req.Offset > len(c.value) {
		return Errorf(InvalidArgs, "offset %d beyond value length %d", req.Offset, len(c.value))
	}
	if req.Offset+len(value) > MaxAttributeLength {
		return Errorf(InvalidValueLength, "value of %d bytes at offset %d exceeds %d", len(value), req.Offset, MaxAttributeLength)
	}
	if c.whandler != nil {
		if err := c.whandler.ServeWrite(req, value); err != nil {
			return err
		}
	}
	v := make([]byte, 0, req.Offset+len(value))
	v = append(v, c.value[:req.Offset]...)
	c.value = append(v, value...)
	return nil
}

// StartNotify subscribes a central. Subscribing twice is a no-op.
func (c *Characteristic) StartNotify() error {
	if !c.flags.Notifiable() {
		return Errorf(NotSupported, "characteristic %s does not notify", c.uuid)
	}
	a := c.application()
	if a == nil {
		return Errorf(Failed, "characteristic %s is not part of an application", c.uuid)
	}
	if c.notifying {
		a.log.WithField("path", c.path).Info("Already notifying, nothing to do")
		return nil
	}
	c.notifying = true
	c.notifier = newNotifier(c, a.sched, a.interval)
	c.notifier.arm()
	a.log.WithField("path", c.path).Debug("Start notify")
	return nil
}

// StopNotify unsubscribes a central. A tick already armed observes the
// cancellation and does not publish or re-arm.
func (c *Characteristic) StopNotify() error {
	a := c.application()
	if !c.notifying {
		if a != nil {
			a.log.WithField("path", c.path).Info("Not notifying, nothing to do")
		}
		return nil
	}
	c.notifying = false
	c.notifier.stop()
	c.notifier = nil
	if a != nil {
		a.log.WithField("path", c.path).Debug("Stop notify")
	}
	return nil
}

// serveNotify runs one notify tick through the handler, or republishes
// the read value if there is none.
func (c *Characteristic) serveNotify(n *notifier) {
	r := Request{Service: c.service, Characteristic: c}
	if c.nhandler != nil {
		c.nhandler.ServeNotify(r, n)
		return
	}
	v, err := c.read(&ReadRequest{Request: r, Cap: MaxAttributeLength})
	if err == nil {
		_, err = n.Write(v)
	}
	if err != nil {
		if a := c.application(); a != nil {
			a.log.WithError(err).WithField("path", c.path).Warn("Notify failed")
		}
	}
}

// publish caches v and emits it as a Value property change.
func (c *Characteristic) publish(v []byte) error {
	c.value = append([]byte{}, v...)
	a := c.application()
	if a == nil || a.emitter == nil {
		return Errorf(Failed, "characteristic %s has no emitter", c.uuid)
	}
	changed := map[string]dbus.Variant{"Value": dbus.MakeVariant(c.Value())}
	return a.emitter.EmitPropertiesChanged(c.path, CharacteristicInterface, changed, []string{})
}

// Properties returns the GattCharacteristic1 properties of c.
func (c *Characteristic) Properties() map[string]dbus.Variant {
	descs := make([]dbus.ObjectPath, 0, len(c.descs))
	for _, d := range c.descs {
		descs = append(descs, d.path)
	}
	return map[string]dbus.Variant{
		"UUID":        dbus.MakeVariant(c.uuid.String()),
		"Service":     dbus.MakeVariant(c.service.path),
		"Flags":       dbus.MakeVariant(c.flags.Strings()),
		"Descriptors": dbus.MakeVariant(descs),
		"Value":       dbus.MakeVariant(c.Value()),
		"Notifying":   dbus.MakeVariant(c.notifying),
	}
}

func (c *Characteristic) attach(p dbus.ObjectPath) {
	c.path = p
	for i, d := range c.descs {
		d.attach(c.descPath(i))
	}
}

func (c *Characteristic) descPath(i int) dbus.ObjectPath {
	return c.path + dbus.ObjectPath("/desc"+strconv.Itoa(i))
}

func (c *Characteristic) application() *Application {
	if c.service == nil {
		return nil
	}
	return c.service.app
}

func (c *Characteristic) checkMutable() {
	if a := c.application(); a != nil && a.frozen {
		panic("cannot modify characteristic " + c.uuid.String() + " after registration")
	}
}

func (c *Characteristic) readRequest(opts map[string]dbus.Variant) (*ReadRequest, error) {
	req := &ReadRequest{
		Request: Request{Service: c.service, Characteristic: c, Options: opts},
		Cap:     MaxAttributeLength,
	}
	var err error
	if req.Offset, err = intOption(opts, "offset"); err != nil {
		return nil, err
	}
	if req.MTU, err = intOption(opts, "mtu"); err != nil {
		return nil, err
	}
	if req.Device, err = pathOption(opts, "device"); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Characteristic) writeRequest(opts map[string]dbus.Variant) (*WriteRequest, error) {
	req := &WriteRequest{
		Request: Request{Service: c.service, Characteristic: c, Options: opts},
	}
	var err error
	if req.Offset, err = intOption(opts, "offset"); err != nil {
		return nil, err
	}
	if req.Device, err = pathOption(opts, "device"); err != nil {
		return nil, err
	}
	if v, ok := opts["type"]; ok {
		s, ok := v.Value().(string)
		if !ok {
			return nil, Errorf(InvalidArgs, "option type: want string, got %s", v.Signature())
		}
		req.Type = s
	}
	return req, nil
}

func intOption(opts map[string]dbus.Variant, key string) (int, error) {
	v, ok := opts[key]
	if !ok {
		return 0, nil
	}
	switch n := v.Value().(type) {
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case int32:
		if n >= 0 {
			return int(n), nil
		}
	}
	return 0, Errorf(InvalidArgs, "option %s: invalid value %s", key, v)
}

func pathOption(opts map[string]dbus.Variant, key string) (dbus.ObjectPath, error) {
	v, ok := opts[key]
	if !ok {
		return "", nil
	}
	p, ok := v.Value().(dbus.ObjectPath)
	if !ok {
		return "", Errorf(InvalidArgs, "option %s: want object path, got %s", key, v.Signature())
	}
	return p, nil
}

// readResponseWriter is the default implementation of ReadResponseWriter.
type readResponseWriter struct {
	capacity int
	buf      *bytes.Buffer
	err      error
}

func newReadResponseWriter(c int) *readResponseWriter {
	return &readResponseWriter{
		capacity: c,
		buf:      new(bytes.Buffer),
	}
}

func (w *readResponseWriter) Write(b []byte) (int, error) {
	if avail := w.capacity - w.buf.Len(); avail < len(b) {
		return 0, fmt.Errorf("requested write %d bytes, %d available", len(b), avail)
	}
	return w.buf.Write(b)
}

func (w *readResponseWriter) SetError(err error) { w.err = err }
func (w *readResponseWriter) bytes() []byte      { return w.buf.Bytes() }
