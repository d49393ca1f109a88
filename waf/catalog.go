package waf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/geowaf/helpers"
	"github.com/lehigh-university-libraries/geowaf/index"
	"github.com/lehigh-university-libraries/geowaf/iso"
)

// ServiceFileName is the output name of the service record.
const ServiceFileName = "service.xml"

// IdentifierMap maps archive identifiers to the file stem their dataset was
// written under. Entries are only added after the dataset file exists.
type IdentifierMap struct {
	stems map[string]string
}

// NewIdentifierMap returns an empty map.
func NewIdentifierMap() *IdentifierMap {
	return &IdentifierMap{stems: make(map[string]string)}
}

// Lookup returns the file stem recorded for identifier.
func (m *IdentifierMap) Lookup(identifier string) (string, bool) {
	s, ok := m.stems[identifier]
	return s, ok
}

// Len returns the number of mapped identifiers.
func (m *IdentifierMap) Len() int {
	return len(m.stems)
}

// Identifiers returns the mapped identifiers in sorted order.
func (m *IdentifierMap) Identifiers() []string {
	ids := make([]string, 0, len(m.stems))
	for id := range m.stems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *IdentifierMap) set(identifier, stem string) {
	m.stems[identifier] = stem
}

// Catalog is the output directory of one build. It tracks the names claimed
// during the build so that two records never write the same file.
type Catalog struct {
	Dir string

	// owners maps a case-folded file name to the identifier that claimed it.
	owners map[string]string
}

// NewCatalog returns a catalog rooted at dir. The directory must exist.
func NewCatalog(dir string) *Catalog {
	c := &Catalog{Dir: dir, owners: make(map[string]string)}
	c.owners[strings.ToLower(ServiceFileName)] = "service record"
	c.owners[strings.ToLower(index.FileName)] = "index page"
	return c
}

// Path returns the full path of name inside the catalog.
func (c *Catalog) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// claim reserves name for owner. Names are compared case-insensitively so
// that the catalog survives being copied to a case-insensitive filesystem.
func (c *Catalog) claim(name, owner string) error {
	key := strings.ToLower(name)
	if prev, ok := c.owners[key]; ok {
		return fmt.Errorf("file name %q for %s is already taken by %s", name, owner, prev)
	}
	c.owners[key] = owner
	return nil
}

// Placement records where one dataset was written.
type Placement struct {
	Identifier string
	Title      string
	File       string
}

// Placer writes dataset records into a catalog under their title and keeps
// the identifier map current.
type Placer struct {
	catalog *Catalog
	ids     *IdentifierMap
}

// NewPlacer returns a placer writing into catalog and registering in ids.
func NewPlacer(catalog *Catalog, ids *IdentifierMap) *Placer {
	return &Placer{catalog: catalog, ids: ids}
}

// Place writes doc to <catalog>/<title>.xml and maps its identifier to the
// title stem. doc must be a classified dataset.
func (p *Placer) Place(doc *iso.Document) (Placement, error) {
	if doc.Kind != iso.KindDataset {
		return Placement{}, newError(KindClassification, doc.Identifier, fmt.Errorf("cannot place %s record as a dataset", doc.Kind))
	}

	stem := helpers.SafeFilename(doc.Title)
	if stem == "" {
		return Placement{}, newError(KindNaming, doc.Identifier, fmt.Errorf("title %q yields an empty file name", doc.Title))
	}
	if _, ok := p.ids.Lookup(doc.Identifier); ok {
		return Placement{}, newError(KindNaming, doc.Identifier, errors.New("identifier appears more than once in the archive"))
	}

	name := stem + ".xml"
	if err := p.catalog.claim(name, doc.Identifier); err != nil {
		return Placement{}, newError(KindNaming, doc.Identifier, err)
	}

	if err := doc.WriteFile(p.catalog.Path(name), false); err != nil {
		return Placement{}, newError(KindFileSystem, doc.Identifier, err)
	}
	p.ids.set(doc.Identifier, stem)

	return Placement{Identifier: doc.Identifier, Title: doc.Title, File: name}, nil
}
