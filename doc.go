// Package gatt provides a Bluetooth Low Energy GATT peripheral
// on top of the BlueZ D-Bus API.
//
// Gatt (Generic Attribute Profile) is the protocol used to write
// BLE peripherals (servers) and centrals (clients). BlueZ owns the
// controller and the ATT bearer; this package describes the attribute
// tree, serves reads, writes and notify subscriptions for it, and
// publishes value changes. Package bluez exports the tree on the bus
// and registers it with the adapter.
//
// SETUP
//
// gatt needs Linux with bluetoothd 5.43 or newer running, and access to
// the system bus. Unless a D-Bus policy grants it, the program must be
// run as root:
//
//     sudo <executable>
//
// USAGE
//
// All entity state is owned by a single event loop. Bus handlers and
// notify ticks run on it one at a time, so handlers need no locking.
//
//     loop := gatt.NewLoop()
//     app := gatt.NewApplication(loop, emitter)
//
//     svc := gatt.NewService(gatt.MustParseUUID("12634d89-d598-4874-8e86-7d042ee07ba7"))
//
//     // A read characteristic that counts how many times it has been read,
//     // and notifies the count once a second while subscribed.
//     n := 0
//     c := svc.AddCharacteristic(gatt.MustParseUUID("4116f8d2-9f66-4f58-a53d-fc7440e7c14e"), gatt.FlagRead|gatt.FlagNotify)
//     c.HandleReadFunc(func(resp gatt.ReadResponseWriter, req *gatt.ReadRequest) {
//         fmt.Fprintf(resp, "count: %d", n)
//         n++
//     })
//     c.HandleNotifyFunc(func(r gatt.Request, nt gatt.Notifier) {
//         fmt.Fprintf(nt, "count: %d", n)
//     })
//     c.AddUserDescription("counter")
//
//     app.AddService(svc)
//
// See package bluez for registering the application and its
// advertisement, and examples/server.go for a complete program.
//
// Note that some BLE central devices, particularly iOS, may aggressively
// cache results from previous connections. If you change your services or
// characteristics, you may need to reboot the other device to pick up the
// changes.
//
// REFERENCES
//
// The object layout follows BlueZ's doc/gatt-api.txt and
// doc/advertising-api.txt. To try out a GATT server, a generic BLE
// client such as nRF Connect or LightBlue is useful.
package gatt
