package builder

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tgienger/skyhawk/internal/models"
)

func drill(id string, minutes int) models.Drill {
	return models.Drill{
		ID:              id,
		Title:           "Drill " + id,
		DurationMinutes: minutes,
		Difficulty:      models.Beginner,
		Category:        models.Passing,
		Tags:            []string{"warmup"},
	}
}

func seqOf(ids ...string) []models.DrillInstance {
	seq := make([]models.DrillInstance, len(ids))
	for i, id := range ids {
		seq[i] = models.DrillInstance{Drill: drill("d-"+id, 5), InstanceID: id}
	}
	return seq
}

func idsOf(seq []models.DrillInstance) string {
	return strings.Join(InstanceIDs(seq), ",")
}

func TestAppendThenRemoveIsIdentity(t *testing.T) {
	for _, start := range [][]string{{}, {"a"}, {"a", "b", "c"}} {
		seq := seqOf(start...)
		grown := Append(seq, drill("drill-9", 10))
		if len(grown) != len(seq)+1 {
			t.Fatalf("Append: want len=%d got=%d", len(seq)+1, len(grown))
		}
		last := grown[len(grown)-1].InstanceID
		back := RemoveByInstanceID(grown, last)
		if idsOf(back) != idsOf(seq) {
			t.Fatalf("remove(append(S)): want=%q got=%q", idsOf(seq), idsOf(back))
		}
	}
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	seq := make([]models.DrillInstance, 2, 10)
	copy(seq, seqOf("a", "b"))
	before := idsOf(seq)
	_ = Append(seq, drill("x", 5))
	_ = Append(seq, drill("y", 5))
	if idsOf(seq) != before {
		t.Fatalf("input mutated: want=%q got=%q", before, idsOf(seq))
	}
	if got := seq[:3][2].InstanceID; got != "" {
		t.Fatalf("Append wrote into the caller's spare capacity: %q", got)
	}
}

func TestSameDrillTwiceGetsDistinctInstances(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	instanceClock.Lock()
	prevNow := instanceClock.now
	instanceClock.now = func() time.Time { return frozen }
	instanceClock.Unlock()
	t.Cleanup(func() {
		instanceClock.Lock()
		instanceClock.now = prevNow
		instanceClock.Unlock()
	})

	d := drill("drill-1", 10)
	seq := Append(Append(nil, d), d)
	if seq[0].InstanceID == seq[1].InstanceID {
		t.Fatalf("instance ids collide: %q", seq[0].InstanceID)
	}
	for _, in := range seq {
		if !strings.HasPrefix(in.InstanceID, "drill-1-") {
			t.Fatalf("instance id %q not derived from drill id", in.InstanceID)
		}
		if in.ID != "drill-1" {
			t.Fatalf("drill id: want=%q got=%q", "drill-1", in.ID)
		}
	}
	if got := TotalMinutes(seq); got != 20 {
		t.Fatalf("TotalMinutes: want=%d got=%d", 20, got)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	seq := seqOf("a", "b", "c")
	if got := idsOf(RemoveByInstanceID(seq, "zzz")); got != "a,b,c" {
		t.Fatalf("remove absent: got=%q", got)
	}
	once := RemoveByInstanceID(seq, "b")
	twice := RemoveByInstanceID(once, "b")
	if idsOf(twice) != "a,c" {
		t.Fatalf("double remove: got=%q", idsOf(twice))
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		from, to string
		want     string
	}{
		{"a", "c", "b,c,a,d"},
		{"d", "a", "d,a,b,c"},
		{"b", "c", "a,c,b,d"},
		{"c", "b", "a,c,b,d"},
		{"a", "d", "b,c,d,a"},
		{"b", "b", "a,b,c,d"},
		{"a", "missing", "a,b,c,d"},
		{"missing", "a", "a,b,c,d"},
	}
	for _, tc := range cases {
		seq := seqOf("a", "b", "c", "d")
		got := Move(seq, tc.from, tc.to)
		if idsOf(got) != tc.want {
			t.Fatalf("Move(%s,%s): want=%q got=%q", tc.from, tc.to, tc.want, idsOf(got))
		}
		if idsOf(seq) != "a,b,c,d" {
			t.Fatalf("Move mutated input: %q", idsOf(seq))
		}
	}
}

func TestMovePreservesMultiset(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	for _, from := range ids {
		for _, to := range ids {
			got := InstanceIDs(Move(seqOf(ids...), from, to))
			seen := map[string]int{}
			for _, id := range got {
				seen[id]++
			}
			for _, id := range ids {
				if seen[id] != 1 {
					t.Fatalf("Move(%s,%s) = %v lost or duplicated %s", from, to, got, id)
				}
			}
		}
	}
}

func TestMoveKeepsRelativeOrderOfOthers(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	for _, from := range ids {
		for _, to := range ids {
			got := InstanceIDs(Move(seqOf(ids...), from, to))
			var rest []string
			for _, id := range got {
				if id != from {
					rest = append(rest, id)
				}
			}
			var want []string
			for _, id := range ids {
				if id != from {
					want = append(want, id)
				}
			}
			if !reflect.DeepEqual(rest, want) {
				t.Fatalf("Move(%s,%s): others reordered: want=%v got=%v", from, to, want, rest)
			}
		}
	}
}

func TestMoveSwappedAdjacentRestores(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	for i := 0; i+1 < len(ids); i++ {
		a, b := ids[i], ids[i+1]
		seq := seqOf(ids...)
		back := Move(Move(seq, a, b), b, a)
		if idsOf(back) != idsOf(seq) {
			t.Fatalf("move(%s,%s) then move(%s,%s): want=%q got=%q", a, b, b, a, idsOf(seq), idsOf(back))
		}
	}
}

func TestMoveIsInvertible(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	for i, from := range ids {
		for _, to := range ids {
			seq := seqOf(ids...)
			moved := Move(seq, from, to)
			// the element now sitting at from's old index marks the way back
			back := Move(moved, from, moved[i].InstanceID)
			if idsOf(back) != idsOf(seq) {
				t.Fatalf("Move(%s,%s) not undone: got=%q", from, to, idsOf(back))
			}
		}
	}
}

func TestMoveUpDown(t *testing.T) {
	seq := seqOf("a", "b", "c")
	if got := idsOf(MoveUp(seq, "b")); got != "b,a,c" {
		t.Fatalf("MoveUp(b): got=%q", got)
	}
	if got := idsOf(MoveUp(seq, "a")); got != "a,b,c" {
		t.Fatalf("MoveUp(first): got=%q", got)
	}
	if got := idsOf(MoveDown(seq, "b")); got != "a,c,b" {
		t.Fatalf("MoveDown(b): got=%q", got)
	}
	if got := idsOf(MoveDown(seq, "c")); got != "a,b,c" {
		t.Fatalf("MoveDown(last): got=%q", got)
	}
	if got := idsOf(MoveDown(seq, "nope")); got != "a,b,c" {
		t.Fatalf("MoveDown(absent): got=%q", got)
	}
}

func TestOperationsOnEmpty(t *testing.T) {
	var empty []models.DrillInstance
	if got := Move(empty, "a", "b"); len(got) != 0 {
		t.Fatalf("Move on empty: %v", got)
	}
	if got := RemoveByInstanceID(empty, "a"); len(got) != 0 {
		t.Fatalf("Remove on empty: %v", got)
	}
	if IndexOf(empty, "a") != -1 {
		t.Fatalf("IndexOf on empty")
	}
}

func TestInstanceIDsAreUniqueUnderBurst(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewInstanceID("d")
		if seen[id] {
			t.Fatalf("duplicate id %s after %d calls", id, i)
		}
		seen[id] = true
	}
	if !strings.HasPrefix(NewInstanceID("drill-7"), fmt.Sprintf("%s-", "drill-7")) {
		t.Fatalf("id prefix")
	}
}
