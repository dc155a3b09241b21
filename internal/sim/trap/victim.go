package trap

import (
	"container/heap"
	"fmt"

	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/soul"
)

// Victim is one pending soul placement. Primary is set only on the
// victim the top-level call was made for; souls born from displacement
// or splitting are secondary and never trigger notifications or stats.
// Displaced residual souls carry no actor.
type Victim struct {
	Actor   actors.ID
	Size    soul.Size
	Primary bool
	Split   bool
}

func (v Victim) String() string {
	kind := "displaced"
	switch {
	case v.Primary:
		kind = "primary"
	case v.Split:
		kind = "split"
	}
	return fmt.Sprintf("%s %s soul", kind, v.Size)
}

// victimQueue is a max-heap over victims ordered by soul size, with
// black souls at the top. Order among equal sizes is unspecified.
type victimQueue []Victim

func (q victimQueue) Len() int            { return len(q) }
func (q victimQueue) Less(i, j int) bool  { return q[i].Size > q[j].Size }
func (q victimQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *victimQueue) Push(x any)         { *q = append(*q, x.(Victim)) }
func (q *victimQueue) Pop() any {
	old := *q
	n := len(old)
	v := old[n-1]
	*q = old[:n-1]
	return v
}

func (q *victimQueue) push(v Victim) { heap.Push(q, v) }

// pop copies the largest pending victim out of the queue.
func (q *victimQueue) pop() Victim { return heap.Pop(q).(Victim) }
