// Package mpu6050 drives an InvenSense MPU-6050 accelerometer and
// gyroscope over I2C.
package mpu6050

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/XC-/bluezgatt/sensor"
)

// DefaultAddr is the device address with AD0 low.
const DefaultAddr = 0x68

// Registers.
const (
	regSmplrtDiv  = 0x19
	regConfig     = 0x1A
	regGyroConfig = 0x1B
	regIntEnable  = 0x38
	regAccelXOutH = 0x3B
	regPwrMgmt1   = 0x6B
)

// init sequence: wake on the x gyro clock, 1 kHz / (1+7) sample rate,
// no low-pass filter, ±250 °/s, data-ready interrupt.
var initSeq = [][2]byte{
	{regPwrMgmt1, 0x01},
	{regSmplrtDiv, 0x07},
	{regConfig, 0x00},
	{regGyroConfig, 0x00},
	{regIntEnable, 0x01},
}

// Dev is a handle to an initialized MPU-6050.
type Dev struct {
	d      *i2c.Dev
	closer func() error
}

// New initializes the device at addr on b.
func New(b i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}}
	for _, w := range initSeq {
		if err := d.d.Tx(w[:], nil); err != nil {
			return nil, fmt.Errorf("mpu6050: write register %#02x: %w", w[0], err)
		}
	}
	return d, nil
}

// Open initializes the host drivers, opens the named I2C bus ("" for
// the first one) and initializes the device at addr on it.
func Open(bus string, addr uint16) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mpu6050: periph host init: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: open i2c bus %q: %w", bus, err)
	}
	d, err := New(b, addr)
	if err != nil {
		b.Close()
		return nil, err
	}
	d.closer = b.Close
	return d, nil
}

// ReadRaw burst-reads the accelerometer and gyroscope outputs.
func (d *Dev) ReadRaw() (sensor.Raw, error) {
	var buf [14]byte
	if err := d.d.Tx([]byte{regAccelXOutH}, buf[:]); err != nil {
		return sensor.Raw{}, fmt.Errorf("mpu6050: read: %w", err)
	}
	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(buf[i:])) }
	// buf[6:8] holds the temperature.
	return sensor.Raw{
		Ax: word(0), Ay: word(2), Az: word(4),
		Gx: word(8), Gy: word(10), Gz: word(12),
	}, nil
}

func (d *Dev) String() string {
	return "MPU6050{" + d.d.String() + "}"
}

// Close releases the bus if Open acquired it.
func (d *Dev) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}
