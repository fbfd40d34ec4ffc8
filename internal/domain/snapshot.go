package domain

import "slices"

const (
	// SnapshotMinLength is the number of watched RAM bytes the bridge script reports.
	SnapshotMinLength = 0x100

	finishedIndex = 0xFE
	finishedMask  = 0x02

	chestBase = 0x100
	chestMask = 0x04
	npcBase   = 0x200
	npcMask   = 0x02
)

// Snapshot is one read of the watched emulator memory region, indexed 0x00-0xFF.
type Snapshot []int

func (s Snapshot) Equal(other Snapshot) bool {
	return slices.Equal(s, other)
}

// Finished reports whether the victory flag is set.
func (s Snapshot) Finished() bool {
	return s[finishedIndex]&finishedMask != 0
}

func (s Snapshot) Checked(id LocationID) bool {
	index, mask := id.Probe()
	return s[index]&mask != 0
}

type LocationID int64

// Trackable reports whether the location maps onto a snapshot byte.
func (id LocationID) Trackable() bool {
	return id >= chestBase && id < npcBase+SnapshotMinLength
}

func (id LocationID) IsChest() bool {
	return id < npcBase
}

// Probe returns the snapshot index and bitmask that mark the location as checked.
// Chests live at id-0x100 and use bit 0x04; NPCs live at id-0x200 and use bit 0x02.
func (id LocationID) Probe() (index int, mask int) {
	if id.IsChest() {
		return int(id - chestBase), chestMask
	}

	return int(id - npcBase), npcMask
}
