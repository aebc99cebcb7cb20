package gatt

import (
	"errors"
	"sort"

	"github.com/godbus/dbus/v5"
)

// MaxEIRPacketLength is the maximum allowed AdvertisingPacket
// and ScanResponsePacket length.
const MaxEIRPacketLength = 31

// ErrEIRPacketTooLong is the error returned when an AdvertisingPacket
// or ScanResponsePacket is too long.
var ErrEIRPacketTooLong = errors.New("max packet length is 31")

// advertising data field types
const (
	typeFlags            = 0x01 // Flags
	typeSomeUUID16       = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	typeAllUUID16        = 0x03 // Complete List of 16-bit Service Class UUIDs
	typeSomeUUID128      = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	typeAllUUID128       = 0x07 // Complete List of 128-bit Service Class UUIDs
	typeShortName        = 0x08 // Shortened Local Name
	typeCompleteName     = 0x09 // Complete Local Name
	typeTxPower          = 0x0A // Tx Power Level
	typeManufacturerData = 0xFF // Manufacturer Specific Data
)

// flag bits
const (
	flagLimitedDiscoverable = 1 << iota // LE Limited Discoverable Mode
	flagGeneralDiscoverable             // LE General Discoverable Mode
	flagLEOnly                          // BR/EDR Not Supported. Bit 37 of LMP Feature Mask Definitions (Page 0)
)

// Advertisement types understood by BlueZ.
const (
	AdvertisementPeripheral = "peripheral"
	AdvertisementBroadcast  = "broadcast"
)

// An Advertisement is the broadcast payload registered with
// org.bluez.LEAdvertisingManager1. Its fields must not change once
// it has been registered.
type Advertisement struct {
	Type             string
	ServiceUUIDs     []UUID
	SolicitUUIDs     []UUID
	ManufacturerData map[uint16][]byte
	LocalName        string
	IncludeTxPower   bool

	path dbus.ObjectPath
}

// NewAdvertisement returns an empty peripheral advertisement.
func NewAdvertisement() *Advertisement {
	return &Advertisement{
		Type:             AdvertisementPeripheral,
		ManufacturerData: make(map[uint16][]byte),
	}
}

// Path returns the advertisement's object path, or "" before it is added
// to an application.
func (a *Advertisement) Path() dbus.ObjectPath { return a.path }

// Properties returns the LEAdvertisement1 properties of a.
func (a *Advertisement) Properties() map[string]dbus.Variant {
	props := map[string]dbus.Variant{
		"Type": dbus.MakeVariant(a.Type),
	}
	if len(a.ServiceUUIDs) > 0 {
		props["ServiceUUIDs"] = dbus.MakeVariant(uuidStrings(a.ServiceUUIDs))
	}
	if len(a.SolicitUUIDs) > 0 {
		props["SolicitUUIDs"] = dbus.MakeVariant(uuidStrings(a.SolicitUUIDs))
	}
	if len(a.ManufacturerData) > 0 {
		md := make(map[uint16]dbus.Variant, len(a.ManufacturerData))
		for id, b := range a.ManufacturerData {
			md[id] = dbus.MakeVariant(b)
		}
		props["ManufacturerData"] = dbus.MakeVariant(md)
	}
	if a.LocalName != "" {
		props["LocalName"] = dbus.MakeVariant(a.LocalName)
	}
	if a.IncludeTxPower {
		// Older BlueZ reads IncludeTxPower, newer reads Includes.
		props["IncludeTxPower"] = dbus.MakeVariant(true)
		props["Includes"] = dbus.MakeVariant([]string{"tx-power"})
	}
	return props
}

// Packets estimates the legacy advertising and scan response packets
// BlueZ will build for a: flags, as many service UUIDs as fit, the
// manufacturer data and tx power in the advertising packet, and the local
// name in the scan response. It returns the UUIDs that fit.
func (a *Advertisement) Packets() (adv, scan []byte, fit []UUID) {
	adv, fit = serviceAdvertisingPacket(a.ServiceUUIDs)
	p := &advPacket{data: adv}
	ids := make([]int, 0, len(a.ManufacturerData))
	for id := range a.ManufacturerData {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		p.appendManufactureDataFit(uint16(id), a.ManufacturerData[uint16(id)])
	}
	if a.IncludeTxPower {
		p.appendFieldFit(typeTxPower, []byte{0})
	}
	if a.LocalName != "" {
		scan = nameScanResponsePacket(a.LocalName)
	}
	return p.data, scan, fit
}

func uuidStrings(uu []UUID) []string {
	ss := make([]string, 0, len(uu))
	for _, u := range uu {
		ss = append(ss, u.String())
	}
	return ss
}

// nameScanResponsePacket constructs a scan response packet with
// the given name, truncated as necessary.
func nameScanResponsePacket(name string) []byte {
	typ := byte(typeCompleteName)
	if max := MaxEIRPacketLength - 2; len(name) > max {
		name = name[:max]
		typ = typeShortName
	}
	scan := new(advPacket)
	scan.appendField(typ, []byte(name))
	return scan.data
}

// serviceAdvertisingPacket constructs an advertising packet that
// advertises as many of the provided service uuids as possible.
// It returns the advertising packet and the contained uuids.
func serviceAdvertisingPacket(uu []UUID) ([]byte, []UUID) {
	fit := make([]UUID, 0, len(uu))
	adv := new(advPacket)
	adv.appendField(typeFlags, []byte{flagGeneralDiscoverable | flagLEOnly})
	for _, u := range uu {
		if ok := adv.appendUUIDFit(u); ok {
			fit = append(fit, u)
		}
	}
	return adv.data, fit
}

type advPacket struct {
	data []byte
}

// appendField appends a BLE advertising packet field.
func (p *advPacket) appendField(typ byte, data []byte) {
	// A field consists of len, typ, data.
	// Len is 1 byte for typ plus len(data).
	p.data = append(p.data, byte(len(data)+1))
	p.data = append(p.data, typ)
	p.data = append(p.data, data...)
}

// appendFieldFit appends a field if it fits in the packet,
// and reports whether it did.
func (p *advPacket) appendFieldFit(typ byte, data []byte) bool {
	if len(p.data)+2+len(data) > MaxEIRPacketLength {
		return false
	}
	p.appendField(typ, data)
	return true
}

func (p *advPacket) appendManufactureDataFit(cid uint16, data []byte) bool {
	d := append([]byte{uint8(cid), uint8(cid >> 8)}, data...)
	return p.appendFieldFit(typeManufacturerData, d)
}

// appendUUIDFit appends a BLE advertised service UUID
// packet field if it fits in the packet, and reports
// whether the UUID fit.
func (p *advPacket) appendUUIDFit(u UUID) bool {
	if len(p.data)+u.Len()+2 > MaxEIRPacketLength {
		return false
	}
	// Err on the side of safety and assume that there might be
	// other services available: Use typeSomeUUID instead
	// of typeAllUUID.
	switch u.Len() {
	case 2:
		p.appendField(typeSomeUUID16, u.b)
	case 16:
		p.appendField(typeSomeUUID128, u.b)
	}
	return true
}
