package reader

import (
	"fmt"
	"sort"
)

// Member is one annotation inside a group, tagged with the page it lives on.
type Member struct {
	PageIndex  int        `json:"page_index"`
	Annotation Annotation `json:"annotation"`
}

// Group is a run of page-adjacent annotations sharing the same resolved
// text, presented to the user as a single highlight. Members are ordered by
// page index with no gaps and no repeated page; a group is never empty.
type Group struct {
	Text           string   `json:"text"`
	FirstPageIndex int      `json:"first_page_index"`
	LastPageIndex  int      `json:"last_page_index"`
	Members        []Member `json:"members"`
}

// ComputeGroups collects every highlight annotation in the document and
// coalesces runs of annotations on consecutive pages with exactly equal
// resolved text into single groups. A highlight drawn across a two-page
// spread is stored as one annotation per page; this is what stitches it
// back into one entry.
//
// The sweep is page-ordered, so output groups come out sorted by
// FirstPageIndex, with same-page annotations kept in provider order. Two
// annotations on the same page never merge: the chain only extends to the
// page after the current last one. Pure and total — no mutation, no error
// conditions, empty input gives an empty result.
func ComputeGroups(p Provider) []Group {
	type entry struct {
		pageIndex int
		ann       Annotation
		text      string
	}

	var entries []entry
	for page := 0; page < p.PageCount(); page++ {
		for _, ann := range p.HighlightsOnPage(page) {
			entries = append(entries, entry{
				pageIndex: page,
				ann:       ann,
				text:      p.ResolvedText(ann),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].pageIndex < entries[j].pageIndex
	})

	var groups []Group
	var open *Group
	for _, e := range entries {
		if open != nil && e.pageIndex == open.LastPageIndex+1 && e.text == open.Text {
			open.Members = append(open.Members, Member{PageIndex: e.pageIndex, Annotation: e.ann})
			open.LastPageIndex = e.pageIndex
			continue
		}
		if open != nil {
			groups = append(groups, *open)
		}
		open = &Group{
			Text:           e.text,
			FirstPageIndex: e.pageIndex,
			LastPageIndex:  e.pageIndex,
			Members:        []Member{{PageIndex: e.pageIndex, Annotation: e.ann}},
		}
	}
	if open != nil {
		groups = append(groups, *open)
	}
	return groups
}

// SpreadNumber maps a zero-based page index to the 1-based two-page spread
// the reader displays it on.
func SpreadNumber(pageIndex int) int {
	return pageIndex/2 + 1
}

// PageLabel renders a group's display label from the spread numbers of its
// first and last page. The range form is used whenever the page indices
// differ, even if both land on the same spread ("Pages 3–3"); the original
// behaviour is kept as-is rather than special-cased.
func PageLabel(g Group) string {
	if g.FirstPageIndex == g.LastPageIndex {
		return fmt.Sprintf("Page %d", SpreadNumber(g.FirstPageIndex))
	}
	return fmt.Sprintf("Pages %d–%d", SpreadNumber(g.FirstPageIndex), SpreadNumber(g.LastPageIndex))
}

// DeleteGroup removes every member annotation of the group from the
// document. Members that have already disappeared out-of-band are skipped
// silently; the remaining ones are still removed. A single best-effort save
// is requested afterwards.
func DeleteGroup(p Provider, g Group) {
	for _, m := range g.Members {
		p.RemoveAnnotation(m.PageIndex, m.Annotation)
	}
	p.MarkDirtyAndSave()
}
