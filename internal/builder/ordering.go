package builder

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tgienger/skyhawk/internal/models"
)

// Instance ids are "<drill id>-<unix millis>". The millisecond stamp is
// bumped past the previous one when the clock has not advanced, so two
// placements in the same tick still get distinct ids within a process.
var instanceClock = struct {
	sync.Mutex
	last int64
	now  func() time.Time
}{now: time.Now}

// NewInstanceID returns a fresh instance id for a placement of drillID
func NewInstanceID(drillID string) string {
	instanceClock.Lock()
	ms := instanceClock.now().UnixMilli()
	if ms <= instanceClock.last {
		ms = instanceClock.last + 1
	}
	instanceClock.last = ms
	instanceClock.Unlock()
	return fmt.Sprintf("%s-%d", drillID, ms)
}

// ObserveInstanceIDs advances the id clock past every stamp in seq, so ids
// restored from an earlier run are never handed out again.
func ObserveInstanceIDs(seq []models.DrillInstance) {
	instanceClock.Lock()
	defer instanceClock.Unlock()
	for _, in := range seq {
		if ms, ok := instanceStamp(in.InstanceID); ok && ms > instanceClock.last {
			instanceClock.last = ms
		}
	}
}

func instanceStamp(id string) (int64, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return 0, false
	}
	ms, err := strconv.ParseInt(id[i+1:], 10, 64)
	return ms, err == nil
}

// Append returns seq with a new placement of drill at the end
func Append(seq []models.DrillInstance, drill models.Drill) []models.DrillInstance {
	out := make([]models.DrillInstance, len(seq), len(seq)+1)
	copy(out, seq)
	in := models.DrillInstance{Drill: drill, InstanceID: NewInstanceID(drill.ID)}
	return append(out, in.Clone())
}

// RemoveByInstanceID returns seq without the placement instanceID.
// An unknown id yields an unchanged copy.
func RemoveByInstanceID(seq []models.DrillInstance, instanceID string) []models.DrillInstance {
	out := make([]models.DrillInstance, 0, len(seq))
	for _, in := range seq {
		if in.InstanceID == instanceID {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Move relocates the placement fromID to the index currently held by toID,
// shifting the elements in between by one. Unknown ids or fromID == toID
// yield an unchanged copy.
func Move(seq []models.DrillInstance, fromID, toID string) []models.DrillInstance {
	out := make([]models.DrillInstance, len(seq))
	copy(out, seq)

	from, to := IndexOf(seq, fromID), IndexOf(seq, toID)
	if from < 0 || to < 0 || from == to {
		return out
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}

// MoveUp swaps the placement with its predecessor
func MoveUp(seq []models.DrillInstance, instanceID string) []models.DrillInstance {
	i := IndexOf(seq, instanceID)
	if i <= 0 {
		return Move(seq, instanceID, instanceID)
	}
	return Move(seq, instanceID, seq[i-1].InstanceID)
}

// MoveDown swaps the placement with its successor
func MoveDown(seq []models.DrillInstance, instanceID string) []models.DrillInstance {
	i := IndexOf(seq, instanceID)
	if i < 0 || i == len(seq)-1 {
		return Move(seq, instanceID, instanceID)
	}
	return Move(seq, instanceID, seq[i+1].InstanceID)
}

// IndexOf returns the position of instanceID in seq, or -1
func IndexOf(seq []models.DrillInstance, instanceID string) int {
	for i, in := range seq {
		if in.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// InstanceIDs lists the instance ids of seq in order
func InstanceIDs(seq []models.DrillInstance) []string {
	ids := make([]string, len(seq))
	for i, in := range seq {
		ids[i] = in.InstanceID
	}
	return ids
}

// TotalMinutes sums the durations of seq
func TotalMinutes(seq []models.DrillInstance) int {
	total := 0
	for _, in := range seq {
		total += in.DurationMinutes
	}
	return total
}
