package gatt

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationPaths(t *testing.T) {
	app, _, _, _ := newTestApplication()
	s0 := NewService(testServiceUUID)
	c0 := s0.AddCharacteristic(testCharUUID, FlagRead|FlagNotify)
	c0.AddUserDescription("demo")
	require.NoError(t, app.AddService(s0))

	s1 := NewService(MustParseUUID("180f"))
	require.NoError(t, app.AddService(s1))
	// Characteristics added after the service is attached get a path at once.
	c1 := s1.AddCharacteristic(MustParseUUID("2a19"), FlagRead)

	adv := NewAdvertisement()
	require.NoError(t, app.AddAdvertisement(adv))

	assert.Equal(t, dbus.ObjectPath("/"), app.Path())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service0"), s0.Path())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service0/char0"), c0.Path())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service1"), s1.Path())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service1/char0"), c1.Path())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/advertisement0"), adv.Path())
	assert.Error(t, app.AddAdvertisement(adv))
}

func TestApplicationBasePath(t *testing.T) {
	app, _, _, _ := newTestApplication(BasePath("/com/example/imu/"))
	s := NewService(testServiceUUID)
	require.NoError(t, app.AddService(s))
	assert.Equal(t, dbus.ObjectPath("/com/example/imu/service0"), s.Path())
	assert.Panics(t, func() { app.Option(BasePath("/other")) })
}

func TestApplicationAddServiceErrors(t *testing.T) {
	app, _, _, _ := newTestApplication()
	require.NoError(t, app.AddService(NewService(testServiceUUID)))

	assert.Error(t, app.AddService(NewService(testServiceUUID)), "duplicate uuid")
	assert.Error(t, app.AddService(NewService(attrGAPUUID)))
	assert.Error(t, app.AddService(NewService(attrGATTUUID)))

	other, _, _, _ := newTestApplication()
	s := NewService(MustParseUUID("180f"))
	require.NoError(t, other.AddService(s))
	assert.Error(t, app.AddService(s), "service owned by another application")

	app.Freeze()
	assert.True(t, app.Frozen())
	assert.Error(t, app.AddService(NewService(MustParseUUID("180a"))))
	assert.Panics(t, func() { app.Services()[0].AddCharacteristic(testCharUUID, FlagRead) })
}

func TestManagedObjects(t *testing.T) {
	app, _, _, _ := newTestApplication()
	s := NewService(testServiceUUID)
	c := s.AddCharacteristic(testCharUUID, FlagRead|FlagNotify).SetValue([]byte("v"))
	c.AddUserDescription("demo")
	require.NoError(t, app.AddService(s))
	require.NoError(t, app.AddAdvertisement(NewAdvertisement()))

	objs := app.ManagedObjects()
	require.Len(t, objs, 3, "one service, one characteristic, one descriptor")

	svc := objs["/org/bluez/example/service0"][ServiceInterface]
	require.NotNil(t, svc)
	assert.Equal(t, "12634d89-d598-4874-8e86-7d042ee07ba7", svc["UUID"].Value())
	assert.Equal(t, true, svc["Primary"].Value())
	assert.Equal(t, []dbus.ObjectPath{"/org/bluez/example/service0/char0"}, svc["Characteristics"].Value())

	chr := objs["/org/bluez/example/service0/char0"][CharacteristicInterface]
	require.NotNil(t, chr)
	assert.Equal(t, "4116f8d2-9f66-4f58-a53d-fc7440e7c14e", chr["UUID"].Value())
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service0"), chr["Service"].Value())
	assert.Equal(t, []string{"read", "notify"}, chr["Flags"].Value())
	assert.Equal(t, []byte("v"), chr["Value"].Value())
	assert.Equal(t, false, chr["Notifying"].Value())
	assert.Equal(t, []dbus.ObjectPath{"/org/bluez/example/service0/char0/desc0"}, chr["Descriptors"].Value())

	desc := objs["/org/bluez/example/service0/char0/desc0"][DescriptorInterface]
	require.NotNil(t, desc)
	assert.Equal(t, []byte("demo"), desc["Value"].Value())
}

func TestObjectsOrder(t *testing.T) {
	app, _, _, _ := newTestApplication()
	s0 := NewService(testServiceUUID)
	s0.AddCharacteristic(testCharUUID, FlagRead).AddUserDescription("a")
	s0.AddCharacteristic(MustParseUUID("2a19"), FlagRead)
	s1 := NewService(MustParseUUID("180f"))
	require.NoError(t, app.AddService(s0))
	require.NoError(t, app.AddService(s1))

	var paths []dbus.ObjectPath
	seen := map[dbus.ObjectPath]bool{}
	for _, o := range app.Objects() {
		assert.False(t, seen[o.Path], "duplicate path %s", o.Path)
		seen[o.Path] = true
		paths = append(paths, o.Path)
	}
	assert.Equal(t, []dbus.ObjectPath{
		"/org/bluez/example/service0",
		"/org/bluez/example/service0/char0",
		"/org/bluez/example/service0/char0/desc0",
		"/org/bluez/example/service0/char1",
		"/org/bluez/example/service1",
	}, paths)
}
