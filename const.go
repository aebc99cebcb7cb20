package gatt

// This file includes constants from the BLE spec and the BlueZ GATT API.

var (
	attrGAPUUID  = UUID16(0x1800)
	attrGATTUUID = UUID16(0x1801)

	// UserDescriptionUUID is the Characteristic User Description descriptor.
	UserDescriptionUUID = UUID16(0x2901)
	// ClientCharacteristicConfigUUID is managed by BlueZ and must not be exported.
	ClientCharacteristicConfigUUID = UUID16(0x2902)
	// PresentationFormatUUID is the Characteristic Presentation Format descriptor.
	PresentationFormatUUID = UUID16(0x2904)
)

// BlueZ GATT interface names.
const (
	ServiceInterface        = "org.bluez.GattService1"
	CharacteristicInterface = "org.bluez.GattCharacteristic1"
	DescriptorInterface     = "org.bluez.GattDescriptor1"
	AdvertisementInterface  = "org.bluez.LEAdvertisement1"
)

// MaxAttributeLength is the longest value an attribute may hold.
const MaxAttributeLength = 512

// DefaultBasePath prefixes the object paths of an Application's entities.
const DefaultBasePath = "/org/bluez/example"
