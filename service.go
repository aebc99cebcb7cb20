package gatt

import (
	"strconv"

	"github.com/godbus/dbus/v5"
)

// A Service is a BLE service.
// Calls to AddCharacteristic must occur before the
// application holding the service is registered.
type Service struct {
	uuid    UUID
	primary bool
	chars   []*Characteristic
	path    dbus.ObjectPath
	app     *Application
}

// NewService creates a primary service with the given UUID.
func NewService(u UUID) *Service {
	return &Service{uuid: u, primary: true}
}

// NewSecondaryService creates a secondary service with the given UUID.
func NewSecondaryService(u UUID) *Service {
	return &Service{uuid: u}
}

// AddCharacteristic adds a characteristic with capability set f to a service.
// AddCharacteristic panics if the service already contains
// another characteristic with the same UUID.
func (s *Service) AddCharacteristic(u UUID, f Flags) *Characteristic {
	for _, char := range s.chars {
		if uuidEqual(char.uuid, u) {
			panic("service already contains a characteristic with uuid " + u.String())
		}
	}
	if s.app != nil && s.app.frozen {
		panic("cannot add characteristic " + u.String() + " after registration")
	}

	char := &Characteristic{
		service: s,
		uuid:    u,
		flags:   f,
	}
	s.chars = append(s.chars, char)
	if s.path != "" {
		char.attach(s.charPath(len(s.chars) - 1))
	}
	return char
}

// UUID returns the service's UUID.
func (s *Service) UUID() UUID { return s.uuid }

// Primary reports whether s is a primary service.
func (s *Service) Primary() bool { return s.primary }

// Path returns the service's object path, or "" before it is added
// to an application.
func (s *Service) Path() dbus.ObjectPath { return s.path }

// Characteristics returns the service's characteristics, in order.
func (s *Service) Characteristics() []*Characteristic { return s.chars }

// Properties returns the GattService1 properties of s.
func (s *Service) Properties() map[string]dbus.Variant {
	chars := make([]dbus.ObjectPath, 0, len(s.chars))
	for _, c := range s.chars {
		chars = append(chars, c.path)
	}
	return map[string]dbus.Variant{
		"UUID":            dbus.MakeVariant(s.uuid.String()),
		"Primary":         dbus.MakeVariant(s.primary),
		"Characteristics": dbus.MakeVariant(chars),
	}
}

func (s *Service) attach(a *Application, p dbus.ObjectPath) {
	s.app = a
	s.path = p
	for i, c := range s.chars {
		c.attach(s.charPath(i))
	}
}

func (s *Service) charPath(i int) dbus.ObjectPath {
	return s.path + dbus.ObjectPath("/char"+strconv.Itoa(i))
}
