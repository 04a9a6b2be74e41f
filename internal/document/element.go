package document

import "strings"

// Attr is one attribute name/value pair. Names are local names without prefix.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of a parsed document. Attributes and children keep
// document order.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
	Parent   *Element

	text    string
	hasText bool
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute, or fallback when it is absent.
func (e *Element) AttrOr(name, fallback string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// Text returns the element's inline text: character data that appears before
// its first child element or comment. ok is false when there is none.
func (e *Element) Text() (text string, ok bool) {
	if !e.hasText {
		return "", false
	}
	return e.text, true
}

// Grandparent returns the parent of the parent element, or nil.
func (e *Element) Grandparent() *Element {
	if e.Parent == nil {
		return nil
	}
	return e.Parent.Parent
}

// FirstChildTagContaining returns the first direct child, in document order,
// whose tag name contains sub. It returns nil when no child matches.
func (e *Element) FirstChildTagContaining(sub string) *Element {
	for _, c := range e.Children {
		if strings.Contains(c.Tag, sub) {
			return c
		}
	}
	return nil
}

func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
