// nrf51_rng.go - nRF51822 random number generator

/*
nrf51_rng.go - RNG Peripheral

Random number generator backed by the host's cryptographic random source.
VALRDY always reads ready while started; the value itself is generated at
the moment VALUE is read. The hardware would raise an interrupt per value,
but micro:bit firmware never enables it, so the interrupt is omitted.

License: GPLv3 or later
*/

package main

import (
	"crypto/rand"
	"io"
)

const (
	NRF51_RNG_START    = 0x000
	NRF51_RNG_STOP     = 0x004
	NRF51_RNG_VALRDY   = 0x100
	NRF51_RNG_SHORTS   = 0x200
	NRF51_RNG_INTEN    = 0x300
	NRF51_RNG_INTENSET = 0x304
	NRF51_RNG_INTENCLR = 0x308
	NRF51_RNG_CONFIG   = 0x504
	NRF51_RNG_VALUE    = 0x508
)

// NRF51RNG is the RNG device. The random source is pluggable for tests;
// it defaults to the host crypto reader.
type NRF51RNG struct {
	value   uint8
	config  uint32
	started bool

	source io.Reader
}

func NewNRF51RNG() *NRF51RNG {
	return &NRF51RNG{source: rand.Reader}
}

func (r *NRF51RNG) DeviceName() string { return "nrf51_rng" }

// SetRandomSource replaces the byte source. Passing nil restores the host
// crypto reader.
func (r *NRF51RNG) SetRandomSource(src io.Reader) {
	if src == nil {
		src = rand.Reader
	}
	r.source = src
}

func (r *NRF51RNG) Read(offset uint32, size int) uint32 {
	switch offset {
	case NRF51_RNG_START, NRF51_RNG_STOP:
		if r.started {
			return 1
		}
		return 0
	case NRF51_RNG_VALRDY:
		// Always ready; the value is generated when VALUE is read.
		if r.started {
			return 1
		}
		return 0
	case NRF51_RNG_SHORTS, NRF51_RNG_INTEN, NRF51_RNG_INTENSET, NRF51_RNG_INTENCLR:
		logUnimpRead(r.DeviceName(), offset)
		return 0
	case NRF51_RNG_VALUE:
		var b [1]byte
		if _, err := io.ReadFull(r.source, b[:]); err != nil {
			// The host crypto source failing is not survivable.
			panic("nrf51_rng: random source failed: " + err.Error())
		}
		r.value = b[0]
		return uint32(r.value)
	default:
		logBadRead(r.DeviceName(), offset)
		return 0
	}
}

func (r *NRF51RNG) Write(offset uint32, size int, value uint32) {
	switch offset {
	case NRF51_RNG_START:
		r.started = true
	case NRF51_RNG_STOP:
		r.started = false
	case NRF51_RNG_CONFIG:
		r.config = value & 1
	case NRF51_RNG_SHORTS, NRF51_RNG_INTEN, NRF51_RNG_INTENSET, NRF51_RNG_INTENCLR, NRF51_RNG_VALRDY:
		logUnimpWrite(r.DeviceName(), offset)
	default:
		logBadWrite(r.DeviceName(), offset)
	}
}

// nrf51RNGState is the version-1 snapshot record.
type nrf51RNGState struct {
	Value   uint8  `cbor:"value"`
	Config  uint32 `cbor:"config"`
	Started bool   `cbor:"started"`
}

func (r *NRF51RNG) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (r *NRF51RNG) SnapshotState() any {
	return &nrf51RNGState{Value: r.value, Config: r.config, Started: r.started}
}

func (r *NRF51RNG) RestoreState(decode func(dst any) error) error {
	var s nrf51RNGState
	if err := decode(&s); err != nil {
		return err
	}
	r.value = s.Value
	r.config = s.Config
	r.started = s.Started
	return nil
}

func (r *NRF51RNG) Reset() {
	r.value = 0
	r.config = 0
	r.started = false
}
