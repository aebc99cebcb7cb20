package bluez

import (
	"github.com/godbus/dbus/v5"

	gatt "github.com/XC-/bluezgatt"
)

// dbusError translates a gatt error into the reply sent to bluetoothd.
// Errors without a gatt code are reported as org.bluez.Error.Failed.
func dbusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return dbus.NewError(errorName(gatt.CodeOf(err)), []interface{}{err.Error()})
}

func errorName(c gatt.ErrorCode) string {
	switch c {
	case gatt.InvalidArgs:
		return ErrorInvalidArgs
	case gatt.NotSupported:
		return ErrorNotSupported
	case gatt.NotPermitted:
		return ErrorNotPermitted
	case gatt.InvalidValueLength:
		return ErrorInvalidValueLength
	default:
		return ErrorFailed
	}
}
