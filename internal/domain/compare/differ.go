// Package compare builds side-by-side comparison records for requirement
// transitions, including a word-level diff for display.
package compare

import "strings"

// DiffKind classifies one diff segment
type DiffKind string

const (
	DiffUnchanged DiffKind = "unchanged"
	DiffChanged   DiffKind = "changed"
	DiffAdded     DiffKind = "added"
	DiffRemoved   DiffKind = "removed"
)

// DiffSegment is one word position in the diff output
type DiffSegment struct {
	// Kind of change at this position
	Kind DiffKind `json:"kind"`

	// Word on the old side; empty for added segments
	OldWord string `json:"old_word,omitempty"`

	// Word on the new side; empty for removed segments
	NewWord string `json:"new_word,omitempty"`
}

// WordDiff diffs two texts positionally: both are split on whitespace
// and walked in lock-step, flagging changed pairs where the words at
// the same index differ, then marking the longer side's tail as added
// or removed. This is deliberately not an edit-distance diff; when word
// counts match but words shifted, it reports changed pairs instead of
// true inserts and deletes, and display code depends on that exact
// behavior.
func WordDiff(oldText, newText string) []DiffSegment {
	oldWords := strings.Fields(oldText)
	newWords := strings.Fields(newText)

	segments := make([]DiffSegment, 0, max(len(oldWords), len(newWords)))
	i := 0
	for ; i < len(oldWords) && i < len(newWords); i++ {
		kind := DiffUnchanged
		if oldWords[i] != newWords[i] {
			kind = DiffChanged
		}
		segments = append(segments, DiffSegment{Kind: kind, OldWord: oldWords[i], NewWord: newWords[i]})
	}
	for ; i < len(newWords); i++ {
		segments = append(segments, DiffSegment{Kind: DiffAdded, NewWord: newWords[i]})
	}
	for ; i < len(oldWords); i++ {
		segments = append(segments, DiffSegment{Kind: DiffRemoved, OldWord: oldWords[i]})
	}
	return segments
}
