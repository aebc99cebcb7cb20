package bluez

// BusName is the well-known name of bluetoothd on the system bus.
const BusName = "org.bluez"

// D-Bus interfaces used or implemented by this package.
const (
	adapterInterface        = "org.bluez.Adapter1"
	gattManagerInterface    = "org.bluez.GattManager1"
	advManagerInterface     = "org.bluez.LEAdvertisingManager1"
	objectManagerInterface  = "org.freedesktop.DBus.ObjectManager"
	propertiesInterface     = "org.freedesktop.DBus.Properties"
	introspectableInterface = "org.freedesktop.DBus.Introspectable"
)

// D-Bus error names returned to bluetoothd.
const (
	ErrorFailed             = "org.bluez.Error.Failed"
	ErrorInvalidArgs        = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrorNotSupported       = "org.bluez.Error.NotSupported"
	ErrorNotPermitted       = "org.bluez.Error.NotPermitted"
	ErrorInvalidValueLength = "org.bluez.Error.InvalidValueLength"
)
