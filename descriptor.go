package gatt

import "github.com/godbus/dbus/v5"

// A Descriptor is a BLE descriptor attached to a characteristic.
type Descriptor struct {
	uuid  UUID
	flags Flags
	value []byte
	path  dbus.ObjectPath
	char  *Characteristic
}

// SetValue sets the descriptor's value.
func (d *Descriptor) SetValue(b []byte) *Descriptor {
	d.value = append([]byte{}, b...)
	return d
}

// ReadValue returns the cached value.
func (d *Descriptor) ReadValue(opts map[string]dbus.Variant) ([]byte, error) {
	if !d.flags.Has(FlagRead) {
		return nil, Errorf(NotPermitted, "descriptor %s is not readable", d.uuid)
	}
	offset, err := intOption(opts, "offset")
	if err != nil {
		return nil, err
	}
	if offset > len(d.value) {
		return nil, Errorf(InvalidArgs, "offset %d beyond value length %d", offset, len(d.value))
	}
	return append([]byte{}, d.value[offset:]...), nil
}

// WriteValue replaces the value; no format validation is applied.
// It fails with NotPermitted unless the descriptor is writable.
func (d *Descriptor) WriteValue(value []byte, opts map[string]dbus.Variant) error {
	if !d.flags.Has(FlagWrite) {
		return Errorf(NotPermitted, "descriptor %s is not writable", d.uuid)
	}
	d.value = append([]byte{}, value...)
	return nil
}

func (d *Descriptor) UUID() UUID                      { return d.uuid }
func (d *Descriptor) Flags() Flags                    { return d.flags }
func (d *Descriptor) Path() dbus.ObjectPath           { return d.path }
func (d *Descriptor) Characteristic() *Characteristic { return d.char }
func (d *Descriptor) Value() []byte                   { return append([]byte{}, d.value...) }

// Properties returns the GattDescriptor1 properties of d.
func (d *Descriptor) Properties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"UUID":           dbus.MakeVariant(d.uuid.String()),
		"Characteristic": dbus.MakeVariant(d.char.path),
		"Flags":          dbus.MakeVariant(d.flags.Strings()),
		"Value":          dbus.MakeVariant(d.Value()),
	}
}

func (d *Descriptor) attach(p dbus.ObjectPath) { d.path = p }
