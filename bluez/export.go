package bluez

import (
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/sirupsen/logrus"

	gatt "github.com/XC-/bluezgatt"
)

// A Loop runs functions serially. *gatt.Loop implements Loop.
type Loop interface {
	Post(f func()) bool
	Do(f func()) bool
	Quit(err error)
}

// exporter publishes gatt entities on the bus. Every method invoked by
// bluetoothd runs on the loop.
type exporter struct {
	conn Conn
	loop Loop
	log  logrus.FieldLogger
}

// do runs f on the loop and translates its error for the bus.
func (e *exporter) do(f func() error) *dbus.Error {
	var err error
	if !e.loop.Do(func() { err = f() }) {
		return dbusError(gatt.Errorf(gatt.Failed, "peripheral is shutting down"))
	}
	return dbusError(err)
}

// exportApplication exports the object manager at the application root
// and every service, characteristic and descriptor below it.
func (e *exporter) exportApplication(app *gatt.Application) error {
	root := &appObject{e: e, app: app}
	if err := e.conn.Export(root, app.Path(), objectManagerInterface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(app.Path()),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: objectManagerInterface, Methods: introspect.Methods(root)},
		},
	}
	if err := e.conn.Export(introspect.NewIntrospectable(node), app.Path(), introspectableInterface); err != nil {
		return err
	}
	for _, o := range app.Objects() {
		if err := e.exportObject(o); err != nil {
			return err
		}
	}
	return nil
}

func (e *exporter) exportObject(o gatt.Object) error {
	var methods interface{}
	switch v := o.Entity.(type) {
	case *gatt.Characteristic:
		methods = &chrcObject{e: e, c: v}
	case *gatt.Descriptor:
		methods = &descObject{e: e, d: v}
	}
	return e.export(o.Path, o.Interface, methods, o.Properties)
}

func (e *exporter) exportAdvertisement(adv *gatt.Advertisement) error {
	return e.export(adv.Path(), gatt.AdvertisementInterface, &advObject{e: e, adv: adv}, adv.Properties)
}

// export exports methods (which may be nil), a Properties implementation
// backed by props, and introspection data for path.
func (e *exporter) export(path dbus.ObjectPath, iface string, methods interface{}, props func() map[string]dbus.Variant) error {
	data := introspect.Interface{Name: iface, Properties: propertyData(props())}
	if methods != nil {
		if err := e.conn.Export(methods, path, iface); err != nil {
			return err
		}
		data.Methods = introspect.Methods(methods)
	}
	po := &propsObject{e: e, iface: iface, props: props}
	if err := e.conn.Export(po, path, propertiesInterface); err != nil {
		return err
	}
	node := &introspect.Node{
		Name:       string(path),
		Interfaces: []introspect.Interface{introspect.IntrospectData, prop.IntrospectData, data},
	}
	e.log.WithFields(logrus.Fields{"path": path, "interface": iface}).Debug("Exported object")
	return e.conn.Export(introspect.NewIntrospectable(node), path, introspectableInterface)
}

func propertyData(props map[string]dbus.Variant) []introspect.Property {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	ps := make([]introspect.Property, 0, len(names))
	for _, n := range names {
		ps = append(ps, introspect.Property{Name: n, Type: props[n].Signature().String(), Access: "read"})
	}
	return ps
}

// appObject implements org.freedesktop.DBus.ObjectManager for the application.
type appObject struct {
	e   *exporter
	app *gatt.Application
}

func (o *appObject) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, *dbus.Error) {
	var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := o.e.do(func() error {
		objs = o.app.ManagedObjects()
		return nil
	})
	return objs, err
}

// chrcObject implements org.bluez.GattCharacteristic1.
type chrcObject struct {
	e *exporter
	c *gatt.Characteristic
}

func (o *chrcObject) ReadValue(opts map[string]dbus.Variant) ([]byte, *dbus.Error) {
	var v []byte
	err := o.e.do(func() (err error) {
		v, err = o.c.ReadValue(opts)
		return err
	})
	if err != nil {
		o.e.log.WithField("path", o.c.Path()).WithField("error", err.Name).Debug("Read rejected")
		return nil, err
	}
	return v, nil
}

func (o *chrcObject) WriteValue(value []byte, opts map[string]dbus.Variant) *dbus.Error {
	err := o.e.do(func() error { return o.c.WriteValue(value, opts) })
	if err != nil {
		o.e.log.WithField("path", o.c.Path()).WithField("error", err.Name).Debug("Write rejected")
	}
	return err
}

func (o *chrcObject) StartNotify() *dbus.Error {
	return o.e.do(o.c.StartNotify)
}

func (o *chrcObject) StopNotify() *dbus.Error {
	return o.e.do(o.c.StopNotify)
}

// descObject implements org.bluez.GattDescriptor1.
type descObject struct {
	e *exporter
	d *gatt.Descriptor
}

func (o *descObject) ReadValue(opts map[string]dbus.Variant) ([]byte, *dbus.Error) {
	var v []byte
	err := o.e.do(func() (err error) {
		v, err = o.d.ReadValue(opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (o *descObject) WriteValue(value []byte, opts map[string]dbus.Variant) *dbus.Error {
	return o.e.do(func() error { return o.d.WriteValue(value, opts) })
}

// advObject implements org.bluez.LEAdvertisement1.
type advObject struct {
	e   *exporter
	adv *gatt.Advertisement
}

// Release is called by bluetoothd when it drops the advertisement.
func (o *advObject) Release() *dbus.Error {
	o.e.log.WithField("path", o.adv.Path()).Info("Advertisement released")
	return nil
}

// propsObject implements org.freedesktop.DBus.Properties for one object.
// All properties are read-only.
type propsObject struct {
	e     *exporter
	iface string
	props func() map[string]dbus.Variant
}

func (o *propsObject) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	if iface != o.iface {
		return dbus.Variant{}, prop.ErrIfaceNotFound
	}
	var v dbus.Variant
	var found bool
	if err := o.e.do(func() error {
		v, found = o.props()[name]
		return nil
	}); err != nil {
		return dbus.Variant{}, err
	}
	if !found {
		return dbus.Variant{}, prop.ErrPropNotFound
	}
	return v, nil
}

func (o *propsObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	if iface != o.iface {
		return nil, prop.ErrIfaceNotFound
	}
	var props map[string]dbus.Variant
	if err := o.e.do(func() error {
		props = o.props()
		return nil
	}); err != nil {
		return nil, err
	}
	return props, nil
}

func (o *propsObject) Set(iface, name string, v dbus.Variant) *dbus.Error {
	if iface != o.iface {
		return prop.ErrIfaceNotFound
	}
	return prop.ErrReadOnly
}
