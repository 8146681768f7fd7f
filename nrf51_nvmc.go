// nrf51_nvmc.go - nRF51822 non-volatile memory controller stub

/*
nrf51_nvmc.go - NVMC Stub

Boot firmware polls READY before touching flash; this stub reports ready
from the start and remembers the last CONFIG value. Erase operations are
accepted and ignored.

License: GPLv3 or later
*/

package main

const (
	NRF51_NVMC_READY     = 0x400
	NRF51_NVMC_CONFIG    = 0x504
	NRF51_NVMC_ERASEPAGE = 0x508
	NRF51_NVMC_ERASEPCR1 = 0x508 // overlaps ERASEPAGE
	NRF51_NVMC_ERASEALL  = 0x50C
	NRF51_NVMC_ERASEPCR0 = 0x510
	NRF51_NVMC_ERASEUICR = 0x514
)

type NRF51NVMC struct {
	ready  uint32
	config uint32
}

func NewNRF51NVMC() *NRF51NVMC {
	return &NRF51NVMC{ready: 1}
}

func (n *NRF51NVMC) DeviceName() string { return "nrf51_nvmc" }

func (n *NRF51NVMC) Read(offset uint32, size int) uint32 {
	switch offset {
	case NRF51_NVMC_READY:
		return n.ready
	default:
		logBadRead(n.DeviceName(), offset)
		return 0
	}
}

func (n *NRF51NVMC) Write(offset uint32, size int, value uint32) {
	switch offset {
	case NRF51_NVMC_CONFIG:
		n.config = value
	case NRF51_NVMC_READY, NRF51_NVMC_ERASEPAGE, NRF51_NVMC_ERASEALL,
		NRF51_NVMC_ERASEPCR0, NRF51_NVMC_ERASEUICR:
		logUnimpWrite(n.DeviceName(), offset)
	default:
		logBadWrite(n.DeviceName(), offset)
	}
}

// nrf51NVMCState is the version-1 snapshot record.
type nrf51NVMCState struct {
	Ready  uint32 `cbor:"ready"`
	Config uint32 `cbor:"config"`
}

func (n *NRF51NVMC) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (n *NRF51NVMC) SnapshotState() any {
	return &nrf51NVMCState{Ready: n.ready, Config: n.config}
}

func (n *NRF51NVMC) RestoreState(decode func(dst any) error) error {
	var s nrf51NVMCState
	if err := decode(&s); err != nil {
		return err
	}
	n.ready = s.Ready
	n.config = s.Config
	return nil
}

func (n *NRF51NVMC) Reset() {
	n.ready = 1
	n.config = 0
}
