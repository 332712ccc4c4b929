// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/tortoise-ln/tortoise/internal/eclair"
)

// LineMargins is the horizontal space the sparkline border takes.
const LineMargins = 2

// Line is a sparkline scaled to 0..100 plus the largest raw slot value.
type Line struct {
	Points []uint64
	Max    uint64
}

// Weight is what a single relay contributes to its slot.
type Weight func(eclair.Relayed) uint64

var (
	CountWeight  Weight = func(eclair.Relayed) uint64 { return 1 }
	VolumeWeight Weight = func(r eclair.Relayed) uint64 { return r.AmountIn }
)

type event struct {
	at     int64
	weight uint64
}

// Sparkline spreads the relays of the 24h before now over width-LineMargins+1
// slots between the first and the last relay.
func Sparkline(relayed []eclair.Relayed, now time.Time, width int, w Weight) Line {
	lineWidth := width - LineMargins
	if lineWidth < 0 {
		return Line{}
	}
	points := make([]uint64, lineWidth+1)

	since := now.Add(-Day)
	var events []event
	for _, r := range relayed {
		at := r.At()
		if !at.After(since) {
			continue
		}
		events = append(events, event{at: at.UnixMilli(), weight: w(r)})
	}
	if len(events) == 0 {
		return Line{Points: points}
	}
	slices.SortFunc(events, func(a, b event) int { return cmp.Compare(a.at, b.at) })

	t0, t1 := events[0].at, events[len(events)-1].at
	for _, e := range events {
		i := 0
		if t1 > t0 {
			i = int(float64(e.at-t0) / float64(t1-t0) * float64(lineWidth))
		}
		points[i] += e.weight
	}

	maxSlot := slices.Max(points)
	if maxSlot == 0 {
		return Line{Points: points}
	}
	for i, p := range points {
		points[i] = uint64(100 * float64(p) / float64(maxSlot))
	}
	return Line{Points: points, Max: maxSlot}
}
