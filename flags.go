package gatt

import (
	"fmt"
	"strings"
)

// Flags is the capability set of a characteristic or descriptor.
type Flags uint

// Do not re-order the bit flags below;
// the low byte is organized to match the BLE spec.

// Characteristic and descriptor capability flags.
const (
	FlagBroadcast                 Flags = 1 << iota // the value may be broadcast
	FlagRead                                        // the value may be read
	FlagWriteWithoutResponse                        // the value may be written to, with no reply
	FlagWrite                                       // the value may be written to, with a reply
	FlagNotify                                      // the characteristic supports notifications
	FlagIndicate                                    // the characteristic supports indications
	FlagAuthenticatedSignedWrites                   // signed writes are accepted
	FlagExtendedProperties                          // extended properties descriptor present
	FlagReliableWrite                               // queued (reliable) writes are accepted
	FlagWritableAuxiliaries                         // descriptors may be written
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{FlagBroadcast, "broadcast"},
	{FlagRead, "read"},
	{FlagWriteWithoutResponse, "write-without-response"},
	{FlagWrite, "write"},
	{FlagNotify, "notify"},
	{FlagIndicate, "indicate"},
	{FlagAuthenticatedSignedWrites, "authenticated-signed-writes"},
	{FlagExtendedProperties, "extended-properties"},
	{FlagReliableWrite, "reliable-write"},
	{FlagWritableAuxiliaries, "writable-auxiliaries"},
}

// ParseFlags converts BlueZ flag names, such as "read" or "notify",
// into a Flags set.
func ParseFlags(names ...string) (Flags, error) {
	var f Flags
next:
	for _, n := range names {
		for _, fn := range flagNames {
			if fn.name == n {
				f |= fn.f
				continue next
			}
		}
		return 0, fmt.Errorf("unknown flag %q", n)
	}
	return f, nil
}

// Has reports whether every flag in g is set in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// Writable reports whether f accepts writes of either kind.
func (f Flags) Writable() bool {
	return f&(FlagWrite|FlagWriteWithoutResponse) != 0
}

// Notifiable reports whether f accepts notify subscriptions.
func (f Flags) Notifiable() bool {
	return f&(FlagNotify|FlagIndicate) != 0
}

// Strings returns the BlueZ names of the flags in f, in bit order.
func (f Flags) Strings() []string {
	ss := []string{}
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			ss = append(ss, fn.name)
		}
	}
	return ss
}

func (f Flags) String() string {
	return strings.Join(f.Strings(), ",")
}
