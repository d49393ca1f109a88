package iso

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Kind is the classification of a metadata record.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindService Kind = "service"
	KindDataset Kind = "dataset"
)

var (
	// ErrMalformed is returned when a record is not well-formed XML.
	ErrMalformed = errors.New("malformed metadata record")

	// ErrNoHierarchyLevel is returned when a record carries no
	// gmd:hierarchyLevel scope code to classify it by.
	ErrNoHierarchyLevel = errors.New("record has no hierarchy level code")

	// ErrNoTitle is returned when a dataset record has no citation title.
	ErrNoTitle = errors.New("dataset record has no citation title")

	// ErrNoDateStamp is returned when a record has no gmd:dateStamp element.
	ErrNoDateStamp = errors.New("record has no dateStamp element")
)

// Document is one metadata record backed by its mutable XML tree.
type Document struct {
	// Identifier is the archive-relative key of the record.
	Identifier string

	Kind Kind

	// Title is the citation title; only set for datasets.
	Title string

	// Timestamp is the current text of the dateStamp element.
	Timestamp string

	// CouplesTo holds the uuidref of every coupled resource, in document
	// order; only set for services.
	CouplesTo []string

	tree *etree.Document
}

// Decode parses data into a Document without classifying it.
func Decode(identifier string, data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}

	d := &Document{
		Identifier: identifier,
		Kind:       KindUnknown,
		tree:       tree,
	}
	d.Timestamp = d.dateStampText()
	return d, nil
}

// Parse decodes and classifies a record.
func Parse(identifier string, data []byte) (*Document, error) {
	d, err := Decode(identifier, data)
	if err != nil {
		return nil, err
	}
	if err := d.Classify(); err != nil {
		return d, err
	}
	return d, nil
}

// ReadFile decodes the record stored at path without classifying it.
func ReadFile(identifier, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(identifier, data)
}

// HierarchyLevel returns the codeListValue of the record's scope code.
func (d *Document) HierarchyLevel() (string, bool) {
	for _, code := range follow(d.tree.Root(), gmd("hierarchyLevel"), gmd("MD_ScopeCode")) {
		if a := code.SelectAttr("codeListValue"); a != nil {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// Classify sets Kind from the hierarchy level code. A "service" code makes
// the record a service and collects its coupled resources; any other code
// makes it a dataset, which must then carry a citation title.
func (d *Document) Classify() error {
	level, ok := d.HierarchyLevel()
	if !ok {
		d.Kind = KindUnknown
		return ErrNoHierarchyLevel
	}

	if level == string(KindService) {
		d.Kind = KindService
		d.CouplesTo = d.CouplesTo[:0]
		for _, r := range d.CoupledResources() {
			d.CouplesTo = append(d.CouplesTo, r.UUIDRef)
		}
		return nil
	}

	d.Kind = KindDataset
	title, ok := d.citationTitle()
	if !ok {
		return ErrNoTitle
	}
	d.Title = title
	return nil
}

func (d *Document) citationTitle() (string, bool) {
	titles := follow(d.tree.Root(),
		gmd("identificationInfo"),
		gmd("MD_DataIdentification"),
		gmd("citation"),
		gmd("CI_Citation"),
		gmd("title"),
		gco("CharacterString"),
	)
	for _, t := range titles {
		if s := strings.TrimSpace(t.Text()); s != "" {
			return s, true
		}
	}
	return "", false
}

// SetServiceCaption replaces the text of every online-resource description
// under the digital transfer options with caption. It returns the number of
// descriptions changed.
func (d *Document) SetServiceCaption(caption string) int {
	descriptions := descendants(d.tree.Root(),
		gmd("MD_DigitalTransferOptions"),
		gmd("onLine"),
		gmd("CI_OnlineResource"),
		gmd("description"),
	)
	for _, desc := range descriptions {
		strs := children(desc, gco("CharacterString"))
		if len(strs) == 0 {
			prefix := prefixFor(d.tree.Root(), NSGCO)
			strs = append(strs, desc.CreateElement(qualify(prefix, "CharacterString")))
		}
		for _, s := range strs {
			s.SetText(caption)
		}
	}
	return len(descriptions)
}

// CoupledResource is one srv:operatesOn reference of a service record.
type CoupledResource struct {
	// UUIDRef is the uuidref attribute; empty when the reference has none.
	UUIDRef string

	// Href is the xlink:href attribute, if any.
	Href string

	el *etree.Element
}

// CoupledResources returns the operatesOn references of the first service
// identification block, in document order.
func (d *Document) CoupledResources() []CoupledResource {
	id := d.serviceIdentification()
	if id == nil {
		return nil
	}
	var out []CoupledResource
	for _, el := range children(id, srv("operatesOn")) {
		r := CoupledResource{el: el}
		for _, a := range el.Attr {
			switch {
			case a.Key == "uuidref" && a.Space == "":
				r.UUIDRef = a.Value
			case a.Key == "href" && a.NamespaceURI() == NSXLink:
				r.Href = a.Value
			}
		}
		out = append(out, r)
	}
	return out
}

func (d *Document) serviceIdentification() *etree.Element {
	return first(descendants(d.tree.Root(), srv("SV_ServiceIdentification")))
}

// LinkCoupledResource removes r from its service identification block and
// appends a replacement operatesOn carrying only an xlink:href of href.
func (d *Document) LinkCoupledResource(r CoupledResource, href string) {
	parent := r.el.Parent()
	if parent == nil {
		return
	}
	parent.RemoveChild(r.el)

	link := parent.CreateElement(qualify(r.el.Space, "operatesOn"))
	xlink := prefixFor(d.tree.Root(), NSXLink)
	link.CreateAttr(qualify(xlink, "href"), href)

	for i, v := range d.CouplesTo {
		if v == r.UUIDRef {
			d.CouplesTo = append(d.CouplesTo[:i], d.CouplesTo[i+1:]...)
			break
		}
	}
}

func (d *Document) dateStamp() *etree.Element {
	return first(descendants(d.tree.Root(), gmd("dateStamp")))
}

func (d *Document) dateStampText() string {
	ds := d.dateStamp()
	if ds == nil {
		return ""
	}
	if kids := ds.ChildElements(); len(kids) > 0 {
		return strings.TrimSpace(kids[0].Text())
	}
	return strings.TrimSpace(ds.Text())
}

// Stamp overwrites the record's dateStamp with date. Every child of the
// dateStamp (gco:Date or gco:DateTime) receives the new text; an empty
// dateStamp gets a gco:Date child.
func (d *Document) Stamp(date string) error {
	ds := d.dateStamp()
	if ds == nil {
		return ErrNoDateStamp
	}
	kids := ds.ChildElements()
	if len(kids) == 0 {
		ds.SetText("")
		prefix := prefixFor(d.tree.Root(), NSGCO)
		kids = append(kids, ds.CreateElement(qualify(prefix, "Date")))
	}
	for _, k := range kids {
		k.SetText(date)
	}
	d.Timestamp = date
	return nil
}

// Bytes serializes the record. Indented output re-flows the whole tree.
func (d *Document) Bytes(indent bool) ([]byte, error) {
	if indent {
		d.tree.Indent(2)
	}
	return d.tree.WriteToBytes()
}

// WriteFile serializes the record to path.
func (d *Document) WriteFile(path string, indent bool) error {
	data, err := d.Bytes(indent)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", d.Identifier, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
