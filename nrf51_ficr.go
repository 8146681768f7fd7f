// nrf51_ficr.go - nRF51822 factory information configuration registers

/*
nrf51_ficr.go - FICR Stub

Factory information block. Only the two words firmware probes during boot
are modeled: the flash page size and the page count. Both are plain
read/write device properties so a machine variant can change them.

License: GPLv3 or later
*/

package main

const (
	NRF51_FICR_CODEPAGESIZE = 0x010
	NRF51_FICR_CODESIZE     = 0x014
)

const (
	FICR_DEFAULT_CODEPAGESIZE = 4096
	FICR_DEFAULT_CODESIZE     = 64
)

type NRF51FICR struct {
	codepagesize uint32
	codesize     uint32
}

func NewNRF51FICR() *NRF51FICR {
	return &NRF51FICR{
		codepagesize: FICR_DEFAULT_CODEPAGESIZE,
		codesize:     FICR_DEFAULT_CODESIZE,
	}
}

func (f *NRF51FICR) DeviceName() string { return "nrf51_ficr" }

func (f *NRF51FICR) Read(offset uint32, size int) uint32 {
	switch offset {
	case NRF51_FICR_CODEPAGESIZE:
		return f.codepagesize
	case NRF51_FICR_CODESIZE:
		return f.codesize
	default:
		logBadRead(f.DeviceName(), offset)
		return 0
	}
}

func (f *NRF51FICR) Write(offset uint32, size int, value uint32) {
	switch offset {
	case NRF51_FICR_CODEPAGESIZE:
		f.codepagesize = value
	case NRF51_FICR_CODESIZE:
		f.codesize = value
	default:
		logBadWrite(f.DeviceName(), offset)
	}
}

// nrf51FICRState is the version-1 snapshot record.
type nrf51FICRState struct {
	Codepagesize uint32 `cbor:"codepagesize"`
	Codesize     uint32 `cbor:"codesize"`
}

func (f *NRF51FICR) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (f *NRF51FICR) SnapshotState() any {
	return &nrf51FICRState{Codepagesize: f.codepagesize, Codesize: f.codesize}
}

func (f *NRF51FICR) RestoreState(decode func(dst any) error) error {
	var s nrf51FICRState
	if err := decode(&s); err != nil {
		return err
	}
	f.codepagesize = s.Codepagesize
	f.codesize = s.Codesize
	return nil
}

func (f *NRF51FICR) Reset() {
	f.codepagesize = FICR_DEFAULT_CODEPAGESIZE
	f.codesize = FICR_DEFAULT_CODESIZE
}
