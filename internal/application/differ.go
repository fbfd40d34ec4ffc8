package application

import "github.com/bnema/ff1c/internal/domain"

type DiffResult struct {
	Checked      []domain.LocationID
	JustFinished bool
}

// Diff compares a snapshot with the one before it. When nothing changed it
// reports nothing, even if flags are set; otherwise every tracked location
// whose bit is set is reported, in tracked order. JustFinished latches on the
// caller side: pass alreadyFinished=true once a completion has been sent.
//
// current must hold at least domain.SnapshotMinLength values.
func Diff(previous, current domain.Snapshot, tracked []domain.LocationID, alreadyFinished bool) DiffResult {
	if previous.Equal(current) {
		return DiffResult{}
	}

	var checked []domain.LocationID
	for _, id := range tracked {
		if current.Checked(id) {
			checked = append(checked, id)
		}
	}

	return DiffResult{
		Checked:      checked,
		JustFinished: !alreadyFinished && current.Finished(),
	}
}
