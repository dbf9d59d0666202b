package wps8

import (
	"fmt"

	"github.com/go-wps/wpscore/model"
	"github.com/go-wps/wpscore/propblob"
)

// fod is one Formatted Object Descriptor: a run of text ending at limPos
// (exclusive) carrying the decoded style for that run (spec glossary
// "FOD"; spec §4.8's BTEC/BTEP leaves).
type fod struct {
	limPos int
	style  model.Style
}

// run is one entry of the merged FOD list mergeFODs produces: the font
// and/or paragraph style taking effect up to limPos. Either pointer may be
// nil when only the other axis changed at this boundary.
type run struct {
	limPos int
	font   *model.Style
	para   *model.Style
}

// parseFDPZone decodes one FDPC/FDPP zone (spec §4.8): a Formatted Disk
// Page is a u16 run count N, N+1 u32 cumulative text positions (the first
// is the zone's starting position, the rest are each run's exclusive end),
// followed by N property blobs. Each blob is self-describing (propblob.Data
// begins with its own u16 total length), so runs need no extra length
// table — this mirrors how a Word-family FKP page pairs a position array
// with a trailing attribute list, simplified because propblob already
// carries its own extent.
func parseFDPZone(data []byte, apply func(*propblob.Data, []string) model.Style, fontNames []string) ([]fod, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("fdp: zone too short")
	}
	n := int(le16(data))
	pos := 2
	need := (n + 1) * 4
	if pos+need > len(data) {
		return nil, fmt.Errorf("fdp: position table (%d entries) runs past zone", n)
	}
	positions := make([]int, n+1)
	for i := range positions {
		positions[i] = int(le32(data[pos:]))
		pos += 4
	}

	runs := make([]fod, 0, n)
	for i := 0; i < n; i++ {
		if pos+2 > len(data) {
			break
		}
		totalLen := int(le16(data[pos:]))
		if totalLen < 2 || pos+totalLen > len(data) {
			return runs, fmt.Errorf("fdp: run %d: declared length %d runs past zone", i, totalLen)
		}
		blob, err := propblob.Parse(data[pos : pos+totalLen])
		if err != nil {
			return runs, fmt.Errorf("fdp: run %d: %w", i, err)
		}
		pos += totalLen
		runs = append(runs, fod{limPos: positions[i+1], style: apply(&blob, fontNames)})
	}
	return runs, nil
}

// mergeFODs combines independently-decoded font and paragraph run lists
// into one sorted-by-position list (spec §4.8: "merges the resulting FODs
// ... into one sorted list keyed by text position").
func mergeFODs(fonts, paras []fod) []run {
	boundaries := make(map[int]bool)
	for _, f := range fonts {
		boundaries[f.limPos] = true
	}
	for _, p := range paras {
		boundaries[p.limPos] = true
	}
	positions := make([]int, 0, len(boundaries))
	for pos := range boundaries {
		positions = append(positions, pos)
	}
	sortInts(positions)

	fontAt := make(map[int]model.Style, len(fonts))
	for _, f := range fonts {
		fontAt[f.limPos] = f.style
	}
	paraAt := make(map[int]model.Style, len(paras))
	for _, p := range paras {
		paraAt[p.limPos] = p.style
	}

	runs := make([]run, 0, len(positions))
	for _, pos := range positions {
		r := run{limPos: pos}
		if s, ok := fontAt[pos]; ok {
			style := s
			r.font = &style
		}
		if s, ok := paraAt[pos]; ok {
			style := s
			r.para = &style
		}
		runs = append(runs, r)
	}
	return runs
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
