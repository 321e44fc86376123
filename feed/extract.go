package feed

import (
	"strings"

	"github.com/spyzhov/ajson"
)

// PageExtractor knows where one feed shape keeps the entries of a page and
// which raw items each entry holds.
//
// Entries returns a *NotFoundError when the feed subject itself is absent
// and a *MalformedError when the expected keys are missing. Items never
// fails: an entry it cannot read yields no items.
type PageExtractor interface {
	Entries(resp *ajson.Node) ([]*ajson.Node, error)
	Items(entry *ajson.Node) []*ajson.Node
}

// CursorExtractor finds the cursor of the next page. The returned state
// always reflects the termination rule; a *MalformedError accompanies a
// stopped state when the cursor location itself was missing.
type CursorExtractor interface {
	Cursor(resp *ajson.Node, entries []*ajson.Node, previous string) (CursorState, error)
}

// Shape bundles the strategies for one feed shape.
type Shape struct {
	Name    string
	Pages   PageExtractor
	Cursors CursorExtractor
}

// lookup walks nested object keys. Missing keys, non-objects and JSON null
// all report false.
func lookup(n *ajson.Node, keys ...string) (*ajson.Node, bool) {
	cur := n
	for _, k := range keys {
		if cur == nil || !cur.IsObject() {
			return nil, false
		}
		next, err := cur.GetKey(k)
		if err != nil {
			return nil, false
		}
		cur = next
	}
	if cur == nil || cur.IsNull() {
		return nil, false
	}
	return cur, true
}

func stringAt(n *ajson.Node, keys ...string) (string, bool) {
	v, ok := lookup(n, keys...)
	if !ok || !v.IsString() {
		return "", false
	}
	s, err := v.GetString()
	if err != nil {
		return "", false
	}
	return s, true
}

func numberAt(n *ajson.Node, keys ...string) (int, bool) {
	v, ok := lookup(n, keys...)
	if !ok || !v.IsNumeric() {
		return 0, false
	}
	f, err := v.GetNumeric()
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func arrayAt(n *ajson.Node, keys ...string) ([]*ajson.Node, bool) {
	v, ok := lookup(n, keys...)
	if !ok || !v.IsArray() {
		return nil, false
	}
	arr, err := v.GetArray()
	if err != nil {
		return nil, false
	}
	return arr, true
}

// entryKind returns the discriminator prefix of an entryId such as
// "tweet-123" or "cursor-bottom-0".
func entryKind(entry *ajson.Node) string {
	id, ok := stringAt(entry, "entryId")
	if !ok {
		return ""
	}
	kind, _, _ := strings.Cut(id, "-")
	return kind
}

// addEntries returns the entries of the first instruction whose
// discriminator key equals "TimelineAddEntries".
func addEntries(instructions []*ajson.Node, discriminator string) ([]*ajson.Node, bool) {
	for _, ins := range instructions {
		if t, _ := stringAt(ins, discriminator); t != "TimelineAddEntries" {
			continue
		}
		entries, ok := arrayAt(ins, "entries")
		return entries, ok
	}
	return nil, false
}
