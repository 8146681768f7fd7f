// machine_snapshot.go - Versioned per-device machine snapshots

/*
machine_snapshot.go - Machine Snapshots

Every stateful device exposes a versioned snapshot record holding exactly
its architectural state - the registers and latches firmware can observe,
not host-side plumbing like tick-source scheduling. The machine gathers
one record per device into a single CBOR document.

Restore is name-addressed and version-checked: a record is applied to the
device with the same name if the stored version is within the device's
accepted range. Devices re-derive whatever follows from the restored
fields (the LED matrix marks both redraw events so the next display tick
repaints, matching what the original model does after load).

CBOR keeps the records self-describing and the schema per-device; there
is no cross-device ordering requirement beyond per-device consistency.

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// snapshotter is implemented by devices that participate in save/restore.
type snapshotter interface {
	Device

	// SnapshotVersion returns the record version written by SnapshotState
	// and the minimum version RestoreState accepts.
	SnapshotVersion() (current, minimum int)

	// SnapshotState returns the serializable architectural state.
	SnapshotState() any

	// RestoreState decodes a stored record into the device. decode
	// unmarshals the raw record into the destination it is handed.
	RestoreState(decode func(dst any) error) error
}

type deviceRecord struct {
	Name    string          `cbor:"name"`
	Version int             `cbor:"version"`
	State   cbor.RawMessage `cbor:"state"`
}

type machineStateDoc struct {
	Machine string         `cbor:"machine"`
	Devices []deviceRecord `cbor:"devices"`
}

// SaveState writes a snapshot of every snapshottable device to path.
func (m *MicrobitMachine) SaveState(path string) error {
	doc := machineStateDoc{Machine: MACHINE_NAME}
	for _, dev := range m.devices {
		s, ok := dev.(snapshotter)
		if !ok {
			continue
		}
		version, _ := s.SnapshotVersion()
		raw, err := cbor.Marshal(s.SnapshotState())
		if err != nil {
			return fmt.Errorf("snapshot: encoding %s: %w", dev.DeviceName(), err)
		}
		doc.Devices = append(doc.Devices, deviceRecord{
			Name:    dev.DeviceName(),
			Version: version,
			State:   raw,
		})
	}

	data, err := cbor.Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: encoding machine document: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState restores device state from a snapshot written by SaveState.
func (m *MicrobitMachine) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	var doc machineStateDoc
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("snapshot: decoding machine document: %w", err)
	}
	if doc.Machine != MACHINE_NAME {
		return fmt.Errorf("snapshot: document is for machine %q, not %q", doc.Machine, MACHINE_NAME)
	}

	byName := make(map[string]snapshotter)
	for _, dev := range m.devices {
		if s, ok := dev.(snapshotter); ok {
			byName[dev.DeviceName()] = s
		}
	}

	for _, rec := range doc.Devices {
		s, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("snapshot: no device named %q in this machine", rec.Name)
		}
		current, minimum := s.SnapshotVersion()
		if rec.Version < minimum || rec.Version > current {
			return fmt.Errorf("snapshot: %s record version %d outside [%d, %d]",
				rec.Name, rec.Version, minimum, current)
		}
		raw := rec.State
		if err := s.RestoreState(func(dst any) error { return cbor.Unmarshal(raw, dst) }); err != nil {
			return fmt.Errorf("snapshot: restoring %s: %w", rec.Name, err)
		}
	}
	return nil
}
