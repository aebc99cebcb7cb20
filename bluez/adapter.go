package bluez

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/godbus/dbus/v5"
)

// ErrNoAdapter is returned by FindAdapter when no adapter supports
// GATT server registration.
var ErrNoAdapter = errors.New("no bluetooth adapter with GattManager1 found")

// FindAdapter returns the object path of the adapter to register with.
// If name is empty, the first adapter (by path) implementing
// org.bluez.GattManager1 is chosen; otherwise the one named name,
// such as "hci1".
func FindAdapter(c Conn, name string) (dbus.ObjectPath, error) {
	var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	call := c.Call(BusName, "/", objectManagerInterface+".GetManagedObjects")
	if err := call.Store(&objs); err != nil {
		return "", fmt.Errorf("list bluez objects: %w", err)
	}
	paths := make([]string, 0, len(objs))
	for p, ifaces := range objs {
		if _, ok := ifaces[gattManagerInterface]; ok {
			paths = append(paths, string(p))
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		if name == "" || path.Base(p) == name {
			return dbus.ObjectPath(p), nil
		}
	}
	if name != "" {
		return "", fmt.Errorf("adapter %s: %w", name, ErrNoAdapter)
	}
	return "", ErrNoAdapter
}

// SetPowered switches the adapter at p on or off.
func SetPowered(c Conn, p dbus.ObjectPath, on bool) error {
	call := c.Call(BusName, p, propertiesInterface+".Set", adapterInterface, "Powered", dbus.MakeVariant(on))
	if call.Err != nil {
		return fmt.Errorf("power adapter %s: %w", p, call.Err)
	}
	return nil
}
