// Package document parses markup files into a navigable tree of elements.
//
// Only well-formedness is checked: any well-formed document is accepted
// regardless of schema. Parsing is strict (matching end tags, known entities,
// no duplicate attributes, exactly one root element).
package document

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrMalformedDocument is matched by errors.Is for any parse failure.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedError reports a document that is not well-formed.
type MalformedError struct {
	Path string // File path, empty when parsing from a reader
	Line int    // 1-based line of the failure, 0 if unknown
	Err  error
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	b.WriteString("malformed document")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Document is a parsed tree. It is built per file and owned by one goroutine.
type Document struct {
	Path string
	Root *Element
}

// Walk visits every element depth-first in document order, starting at the root.
// Returning false from fn stops the walk.
func (d *Document) Walk(fn func(*Element) bool) {
	if d == nil || d.Root == nil {
		return
	}
	d.Root.walk(fn)
}

// FindAll returns every element satisfying pred, in document order.
func (d *Document) FindAll(pred func(*Element) bool) []*Element {
	var found []*Element
	d.Walk(func(e *Element) bool {
		if pred(e) {
			found = append(found, e)
		}
		return true
	})
	return found
}

// ParseFile reads and parses the file at path. Read failures are returned as
// ordinary wrapped errors; parse failures as *MalformedError.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		var mErr *MalformedError
		if errors.As(err, &mErr) {
			mErr.Path = path
			return nil, mErr
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse builds a Document from r.
func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	src := &recordingReader{r: br}
	p := &treeBuilder{dec: xml.NewDecoder(src), src: src}
	p.dec.Strict = true
	p.dec.CharsetReader = charset.NewReaderLabel

	root, err := p.build()
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// treeBuilder turns the decoder's token stream into Elements.
type treeBuilder struct {
	dec   *xml.Decoder
	src   *recordingReader
	stack []*frame
	root  *Element
}

type frame struct {
	el *Element
	// leading is true until the element gets its first child element or comment.
	leading bool
}

func (p *treeBuilder) malformed(err error) error {
	line := 0
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		line = syn.Line
	} else {
		line, _ = p.dec.InputPos()
	}
	return &MalformedError{Line: line, Err: err}
}

func (p *treeBuilder) build() (*Element, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if p.src.err != nil {
				return nil, p.src.err
			}
			return nil, p.malformed(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			p.stack = p.stack[:len(p.stack)-1]
		case xml.CharData:
			if err := p.charData(t); err != nil {
				return nil, err
			}
		case xml.Comment, xml.ProcInst:
			if top := p.top(); top != nil {
				top.leading = false
			}
		case xml.Directive:
			p.declareEntities(t)
		}
	}

	if len(p.stack) > 0 {
		return nil, p.malformed(fmt.Errorf("unclosed element <%s>", p.top().el.Tag))
	}
	if p.root == nil {
		return nil, p.malformed(errors.New("no root element"))
	}
	return p.root, nil
}

// internalEntity matches a general entity with a literal value in a DOCTYPE
// internal subset. Parameter and external entities are not expanded.
var internalEntity = regexp.MustCompile(`<!ENTITY\s+([^\s%"'>]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// declareEntities registers the internal entities of a DOCTYPE so later
// references to them resolve.
func (p *treeBuilder) declareEntities(d xml.Directive) {
	if !bytes.HasPrefix(d, []byte("DOCTYPE")) {
		return
	}
	for _, m := range internalEntity.FindAllSubmatch(d, -1) {
		if p.dec.Entity == nil {
			p.dec.Entity = make(map[string]string)
		}
		name := string(m[1])
		if _, ok := p.dec.Entity[name]; ok {
			// The first declaration is binding.
			continue
		}
		if m[2] != nil {
			p.dec.Entity[name] = string(m[2])
		} else {
			p.dec.Entity[name] = string(m[3])
		}
	}
}

func (p *treeBuilder) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *treeBuilder) start(t xml.StartElement) error {
	el := &Element{Tag: t.Name.Local}

	seen := make(map[xml.Name]bool, len(t.Attr))
	for _, a := range t.Attr {
		if seen[a.Name] {
			return p.malformed(fmt.Errorf("duplicate attribute %q on <%s>", a.Name.Local, el.Tag))
		}
		seen[a.Name] = true

		// Namespace declarations are not attributes of the element.
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		// Prefixed attributes live in another namespace and never match plain names.
		if a.Name.Space != "" {
			continue
		}
		el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}

	parent := p.top()
	switch {
	case parent != nil:
		el.Parent = parent.el
		parent.el.Children = append(parent.el.Children, el)
		parent.leading = false
	case p.root != nil:
		return p.malformed(fmt.Errorf("multiple root elements (<%s> after <%s>)", el.Tag, p.root.Tag))
	default:
		p.root = el
	}

	p.stack = append(p.stack, &frame{el: el, leading: true})
	return nil
}

func (p *treeBuilder) charData(data xml.CharData) error {
	top := p.top()
	if top == nil {
		if len(bytes.TrimSpace(data)) != 0 {
			return p.malformed(errors.New("text outside root element"))
		}
		return nil
	}
	if top.leading && len(data) > 0 {
		top.el.text += string(data)
		top.el.hasText = true
	}
	return nil
}

// recordingReader remembers the first non-EOF error of the wrapped reader so
// I/O failures can be told apart from syntax errors.
type recordingReader struct {
	r   io.Reader
	err error
}

func (rr *recordingReader) Read(b []byte) (int, error) {
	n, err := rr.r.Read(b)
	if err != nil && err != io.EOF && rr.err == nil {
		rr.err = err
	}
	return n, err
}
