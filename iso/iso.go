// Package iso reads and edits ISO 19139 metadata records as exported by
// GeoNetwork.
//
// Lookups are namespace aware: elements are matched by namespace URI and local
// name, so records that bind the ISO namespaces to unusual prefixes (or use a
// default namespace) are handled the same as the usual gmd/gco/srv layout.
package iso

import (
	"strings"

	"github.com/beevik/etree"
)

// Namespace URIs used by ISO 19139 records.
const (
	NSGMD   = "http://www.isotc211.org/2005/gmd"
	NSGCO   = "http://www.isotc211.org/2005/gco"
	NSSRV   = "http://www.isotc211.org/2005/srv"
	NSXLink = "http://www.w3.org/1999/xlink"
)

// Preferred prefixes when a namespace has to be declared.
var preferredPrefix = map[string]string{
	NSGMD:   "gmd",
	NSGCO:   "gco",
	NSSRV:   "srv",
	NSXLink: "xlink",
}

// Name is a namespace-qualified element name.
type Name struct {
	Space string
	Local string
}

func gmd(local string) Name { return Name{NSGMD, local} }
func gco(local string) Name { return Name{NSGCO, local} }
func srv(local string) Name { return Name{NSSRV, local} }

func (n Name) matches(e *etree.Element) bool {
	return e.Tag == n.Local && e.NamespaceURI() == n.Space
}

// children returns the direct child elements of e named n.
func children(e *etree.Element, n Name) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if n.matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// follow walks a relative path of child steps from e and returns every
// element reached, in document order.
func follow(e *etree.Element, steps ...Name) []*etree.Element {
	current := []*etree.Element{e}
	for _, step := range steps {
		var next []*etree.Element
		for _, el := range current {
			next = append(next, children(el, step)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// descendants returns every element below e (e excluded) whose path ends in
// steps, in document order. It is the equivalent of ".//a/b/c".
func descendants(e *etree.Element, steps ...Name) []*etree.Element {
	if len(steps) == 0 {
		return nil
	}
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if steps[0].matches(c) {
				out = append(out, follow(c, steps[1:]...)...)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

func first(els []*etree.Element) *etree.Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// prefixFor returns the prefix bound to uri on the root element, declaring a
// new binding there if none exists. An empty result means uri is the default
// namespace.
func prefixFor(root *etree.Element, uri string) string {
	for _, a := range root.Attr {
		if a.Value != uri {
			continue
		}
		if a.Space == "xmlns" {
			return a.Key
		}
		if a.Space == "" && a.Key == "xmlns" {
			return ""
		}
	}

	prefix := preferredPrefix[uri]
	if prefix == "" {
		prefix = "ns"
	}
	taken := func(p string) bool {
		return root.SelectAttr("xmlns:"+p) != nil
	}
	candidate := prefix
	for i := 1; taken(candidate); i++ {
		candidate = prefix + strings.Repeat("_", i)
	}
	root.CreateAttr("xmlns:"+candidate, uri)
	return candidate
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
