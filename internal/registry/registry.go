// Package registry tracks per-node edit state across reparses.
//
// The whole document is reparsed on every change, so node pointers never
// survive a cycle. Edit state is instead keyed by a content fingerprint
// that stays stable while the user types elsewhere in the document.
package registry

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/gerunddev/inkmark/internal/markdown"
)

// Identity is the stable key for an editable node. Two nodes collide only
// if they have the same kind, the same nesting depth, an identical first
// source line, and the same occurrence order among such twins.
type Identity struct {
	Kind    markdown.Kind
	Depth   int
	LineSum uint64
	Ordinal int
}

func (id Identity) String() string {
	return fmt.Sprintf("%s@%d:%016x#%d", id.Kind, id.Depth, id.LineSum, id.Ordinal)
}

// Span is a 1-indexed inclusive source line range.
type Span struct {
	Start int
	End   int
}

// State is the edit state of one editable node.
type State struct {
	ID       Identity
	Span     Span
	Text     string // working text while editing
	Original string // node text when editing began
	Current  string // node text as of the last reconcile
	Editing  bool
}

// Diff reports what one reconcile pass did.
type Diff struct {
	Created   int
	Refreshed int
	Preserved int
	Dropped   int
}

// Registry is the identity-keyed cache of edit states.
type Registry struct {
	states map[Identity]*State
	order  []Identity // document order as of the last reconcile
}

func New() *Registry {
	return &Registry{states: make(map[Identity]*State)}
}

// editableKind reports whether nodes of this kind carry inline edit state.
// List items edit through their inner paragraph.
func editableKind(k markdown.Kind) bool {
	switch k {
	case markdown.KindHeading, markdown.KindParagraph, markdown.KindCodeBlock, markdown.KindTableRow:
		return true
	}
	return false
}

// fingerprint hashes the first source line of a node.
func fingerprint(line string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(line))
	return h.Sum64()
}

func nodeText(lines []string, span Span) string {
	if span.Start < 1 || span.Start > len(lines) {
		return ""
	}
	end := span.End
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[span.Start-1:end], "\n")
}

// Reconcile walks a freshly parsed tree and brings the cache in line with
// it. New editable nodes get entries, known ones get their span and text
// refreshed, entries mid-edit keep their working text, and entries whose
// node disappeared are dropped.
func (r *Registry) Reconcile(root *markdown.Node, lines []string) Diff {
	var diff Diff
	seen := make(map[Identity]bool)
	ordinals := make(map[Identity]int)
	r.order = r.order[:0]

	root.Walk(func(n *markdown.Node) bool {
		if !editableKind(n.Kind) || n.StartLine == 0 {
			return true
		}

		firstLine := ""
		if n.StartLine >= 1 && n.StartLine <= len(lines) {
			firstLine = lines[n.StartLine-1]
		}
		base := Identity{Kind: n.Kind, Depth: n.Depth, LineSum: fingerprint(firstLine)}
		id := base
		id.Ordinal = ordinals[base]
		ordinals[base]++

		span := Span{Start: n.StartLine, End: n.EndLine}
		text := nodeText(lines, span)

		st, ok := r.states[id]
		switch {
		case !ok:
			st = &State{ID: id, Span: span, Current: text}
			r.states[id] = st
			diff.Created++
		case st.Editing:
			st.Span = span
			st.Current = text
			diff.Preserved++
		default:
			st.Span = span
			st.Current = text
			diff.Refreshed++
		}
		seen[id] = true
		r.order = append(r.order, id)

		// Code blocks and table rows do not nest editable children.
		return n.Kind != markdown.KindCodeBlock && n.Kind != markdown.KindTableRow
	})

	for id := range r.states {
		if !seen[id] {
			delete(r.states, id)
			diff.Dropped++
		}
	}
	return diff
}

// Get returns the state for an identity.
func (r *Registry) Get(id Identity) (*State, bool) {
	st, ok := r.states[id]
	return st, ok
}

// StateAtLine returns the innermost editable state whose span covers the
// line. Later entries in document order are the more deeply nested ones.
func (r *Registry) StateAtLine(line int) (*State, bool) {
	var found *State
	for _, id := range r.order {
		st := r.states[id]
		if st != nil && line >= st.Span.Start && line <= st.Span.End {
			found = st
		}
	}
	return found, found != nil
}

// Len reports the number of tracked states.
func (r *Registry) Len() int { return len(r.states) }

// BeginEdit opens an inline edit on a node and returns its current text.
func (r *Registry) BeginEdit(id Identity) (string, bool) {
	st, ok := r.states[id]
	if !ok {
		return "", false
	}
	if !st.Editing {
		st.Editing = true
		st.Original = st.Current
		st.Text = st.Current
	}
	return st.Text, true
}

// UpdateEdit replaces the working text of an open edit.
func (r *Registry) UpdateEdit(id Identity, text string) bool {
	st, ok := r.states[id]
	if !ok || !st.Editing {
		return false
	}
	st.Text = text
	return true
}

// CommitEdit closes an open edit and returns the final text and the span
// to splice it into.
func (r *Registry) CommitEdit(id Identity) (string, Span, bool) {
	st, ok := r.states[id]
	if !ok || !st.Editing {
		return "", Span{}, false
	}
	st.Editing = false
	text := st.Text
	st.Original = ""
	st.Text = ""
	return text, st.Span, true
}

// CancelEdit discards an open edit, reverting to the original text.
func (r *Registry) CancelEdit(id Identity) bool {
	st, ok := r.states[id]
	if !ok || !st.Editing {
		return false
	}
	st.Editing = false
	st.Original = ""
	st.Text = ""
	return true
}

// Invalidate discards all edit state. Called when the document text is
// swapped out from under the registry, such as on undo or file reload.
func (r *Registry) Invalidate() {
	r.states = make(map[Identity]*State)
	r.order = r.order[:0]
}
