package gatt

import "github.com/godbus/dbus/v5"

// An Object is one exported entity of the GATT tree.
type Object struct {
	Path      dbus.ObjectPath
	Interface string
	Entity    interface{} // *Service, *Characteristic or *Descriptor
}

// Properties returns the object's current properties.
func (o Object) Properties() map[string]dbus.Variant {
	switch e := o.Entity.(type) {
	case *Service:
		return e.Properties()
	case *Characteristic:
		return e.Properties()
	case *Descriptor:
		return e.Properties()
	}
	return nil
}

// Objects returns every service, characteristic and descriptor of the
// application, depth first, in the order they were added.
func (a *Application) Objects() []Object {
	var objs []Object
	for _, svc := range a.services {
		objs = append(objs, svc.objects()...)
	}
	return objs
}

func (s *Service) objects() []Object {
	objs := []Object{{Path: s.path, Interface: ServiceInterface, Entity: s}}
	for _, c := range s.chars {
		objs = append(objs, Object{Path: c.path, Interface: CharacteristicInterface, Entity: c})
		for _, d := range c.descs {
			objs = append(objs, Object{Path: d.path, Interface: DescriptorInterface, Entity: d})
		}
	}
	return objs
}

// ManagedObjects implements org.freedesktop.DBus.ObjectManager.GetManagedObjects
// for the application: every entity path mapped to its interface and
// properties.
func (a *Application) ManagedObjects() map[dbus.ObjectPath]map[string]map[string]dbus.Variant {
	m := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant)
	for _, o := range a.Objects() {
		m[o.Path] = map[string]map[string]dbus.Variant{o.Interface: o.Properties()}
	}
	return m
}
