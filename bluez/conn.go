package bluez

import "github.com/godbus/dbus/v5"

// A Conn is the subset of a D-Bus connection used to export the GATT tree
// and talk to bluetoothd.
type Conn interface {
	// Export exports the methods of v on path under iface.
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	// Emit sends the signal name from path.
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	// Call invokes method on dest at path and waits for the reply.
	Call(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call
	// Go invokes method on dest at path without waiting.
	// The reply is delivered on the returned call's Done channel.
	Go(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call
}

type conn struct {
	c *dbus.Conn
}

// NewConn adapts a godbus connection, typically from dbus.ConnectSystemBus.
func NewConn(c *dbus.Conn) Conn {
	return &conn{c: c}
}

func (c *conn) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	return c.c.Export(v, path, iface)
}

func (c *conn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	return c.c.Emit(path, name, values...)
}

func (c *conn) Call(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return c.c.Object(dest, path).Call(method, 0, args...)
}

func (c *conn) Go(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return c.c.Object(dest, path).Go(method, 0, make(chan *dbus.Call, 1), args...)
}

// An Emitter publishes gatt property changes as
// org.freedesktop.DBus.Properties.PropertiesChanged signals.
type Emitter struct {
	conn Conn
}

// NewEmitter returns an Emitter sending signals on c.
func NewEmitter(c Conn) *Emitter {
	return &Emitter{conn: c}
}

// EmitPropertiesChanged implements gatt.Emitter.
func (e *Emitter) EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant, invalidated []string) error {
	if invalidated == nil {
		invalidated = []string{}
	}
	return e.conn.Emit(path, propertiesInterface+".PropertiesChanged", iface, changed, invalidated)
}
