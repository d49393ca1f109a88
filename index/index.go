// Package index renders the index.html page of a WAF.
package index

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FileName is the name of the index page inside a catalog.
const FileName = "index.html"

// Title is the page title and heading for client.
func Title(client string) string {
	return client + " INSPIRE metadata index page"
}

// List returns the regular files in dir sorted by name, leaving out the
// index page itself.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == FileName {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Render writes the index page for files to w. Each file gets one link whose
// text and target are the file name.
func Render(w io.Writer, client string, files []string) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	title := element(atom.Title)
	title.AppendChild(text(Title(client)))
	head.AppendChild(title)

	body := element(atom.Body)
	root.AppendChild(body)
	h1 := element(atom.H1)
	h1.AppendChild(text(Title(client)))
	body.AppendChild(h1)

	for _, name := range files {
		a := element(atom.A, html.Attribute{Key: "href", Val: name})
		a.AppendChild(text(name))
		body.AppendChild(a)
		body.AppendChild(element(atom.Br))
		body.AppendChild(text("\n"))
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}
	return nil
}

// Write lists dir and writes its index page there. It returns the files
// linked from the page.
func Write(dir, client string) ([]string, error) {
	files, err := List(dir)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, client, files); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(filepath.Join(dir, FileName), buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}
	return files, nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
