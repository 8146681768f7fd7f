// unimp_device.go - Placeholder device for unmodeled peripheral slots

/*
unimp_device.go - Unimplemented Peripheral Slots

The nRF51 memory map is dense with peripherals this machine does not
model (radio, UART, SPI/TWI, ADC, RTC, watchdog, PPI and friends). Each
gets one of these: reads return zero and writes vanish, with a log line
at the unimplemented level so misbehaving firmware can be diagnosed.

License: GPLv3 or later
*/

package main

type UnimplementedDevice struct {
	name string
}

func NewUnimplementedDevice(name string) *UnimplementedDevice {
	return &UnimplementedDevice{name: name}
}

func (u *UnimplementedDevice) DeviceName() string { return u.name }

func (u *UnimplementedDevice) Read(offset uint32, size int) uint32 {
	logUnimpRead(u.name, offset)
	return 0
}

func (u *UnimplementedDevice) Write(offset uint32, size int, value uint32) {
	logUnimpWrite(u.name, offset)
}

func (u *UnimplementedDevice) Reset() {}
