package iso_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/geowaf/iso"
	"github.com/lehigh-university-libraries/geowaf/waf/waftest"
)

func TestParseDataset(t *testing.T) {
	doc, err := iso.Parse("abc-123", []byte(waftest.Dataset("abc-123", "Road Network 2020")))
	require.NoError(t, err)

	assert.Equal(t, iso.KindDataset, doc.Kind)
	assert.Equal(t, "abc-123", doc.Identifier)
	assert.Equal(t, "Road Network 2020", doc.Title)
	assert.Equal(t, "2013-06-12T09:30:00", doc.Timestamp)
	assert.Empty(t, doc.CouplesTo)
}

func TestParseService(t *testing.T) {
	doc, err := iso.Parse("svc", []byte(waftest.Service("svc", "abc-123", "zzz-999")))
	require.NoError(t, err)

	assert.Equal(t, iso.KindService, doc.Kind)
	assert.Empty(t, doc.Title)
	assert.Equal(t, []string{"abc-123", "zzz-999"}, doc.CouplesTo)
}

func TestParseNonServiceLevelIsDataset(t *testing.T) {
	input := strings.Replace(waftest.Dataset("s1", "Boundaries"), `codeListValue="dataset"`, `codeListValue="series"`, 1)

	doc, err := iso.Parse("s1", []byte(input))
	require.NoError(t, err)
	assert.Equal(t, iso.KindDataset, doc.Kind)
	assert.Equal(t, "Boundaries", doc.Title)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "malformed",
			input: "<gmd:MD_Metadata",
			want:  iso.ErrMalformed,
		},
		{
			name: "no hierarchy level",
			input: `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd">
  <gmd:dateStamp/>
</gmd:MD_Metadata>`,
			want: iso.ErrNoHierarchyLevel,
		},
		{
			name:  "dataset without title",
			input: waftest.DatasetWithoutTitle("x"),
			want:  iso.ErrNoTitle,
		},
		{
			name:  "blank title",
			input: waftest.Dataset("x", "   "),
			want:  iso.ErrNoTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iso.Parse("x", []byte(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseMatchesNamespaceNotPrefix(t *testing.T) {
	input := `<?xml version="1.0"?>
<MD_Metadata xmlns="http://www.isotc211.org/2005/gmd" xmlns:c="http://www.isotc211.org/2005/gco">
  <hierarchyLevel><MD_ScopeCode codeListValue="dataset"/></hierarchyLevel>
  <identificationInfo><MD_DataIdentification><citation><CI_Citation>
    <title><c:CharacterString>Default Namespace Title</c:CharacterString></title>
  </CI_Citation></citation></MD_DataIdentification></identificationInfo>
</MD_Metadata>`

	doc, err := iso.Parse("d", []byte(input))
	require.NoError(t, err)
	assert.Equal(t, "Default Namespace Title", doc.Title)
}

func TestParseIgnoresForeignNamespace(t *testing.T) {
	input := `<gmd:MD_Metadata xmlns:gmd="http://example.org/not-iso">
  <gmd:hierarchyLevel><gmd:MD_ScopeCode codeListValue="service"/></gmd:hierarchyLevel>
</gmd:MD_Metadata>`

	_, err := iso.Parse("x", []byte(input))
	assert.ErrorIs(t, err, iso.ErrNoHierarchyLevel)
}

func TestSetServiceCaption(t *testing.T) {
	doc, err := iso.Parse("svc", []byte(waftest.Service("svc")))
	require.NoError(t, err)

	n := doc.SetServiceCaption("INSPIRE Service GetCapabilities URL")
	assert.Equal(t, 1, n)

	out, err := doc.Bytes(false)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<gco:CharacterString>INSPIRE Service GetCapabilities URL</gco:CharacterString>")
	assert.NotContains(t, string(out), "Web Map Service")
}

func TestLinkCoupledResource(t *testing.T) {
	doc, err := iso.Parse("svc", []byte(waftest.Service("svc", "abc-123", "zzz-999")))
	require.NoError(t, err)

	refs := doc.CoupledResources()
	require.Len(t, refs, 2)

	doc.LinkCoupledResource(refs[0], "https://example.org/data/Road Network 2020.xml")

	after := doc.CoupledResources()
	require.Len(t, after, 2)
	// The unresolved reference keeps its place; the link is appended.
	assert.Equal(t, "zzz-999", after[0].UUIDRef)
	assert.Empty(t, after[1].UUIDRef)
	assert.Equal(t, "https://example.org/data/Road Network 2020.xml", after[1].Href)
	assert.Equal(t, []string{"zzz-999"}, doc.CouplesTo)

	out, err := doc.Bytes(false)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<srv:operatesOn xlink:href="https://example.org/data/Road Network 2020.xml"/>`)
	assert.Contains(t, string(out), `<srv:operatesOn uuidref="zzz-999"/>`)
}

func TestLinkCoupledResourceDeclaresXLink(t *testing.T) {
	input := `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:srv="http://www.isotc211.org/2005/srv">
  <gmd:hierarchyLevel><gmd:MD_ScopeCode codeListValue="service"/></gmd:hierarchyLevel>
  <gmd:identificationInfo><srv:SV_ServiceIdentification>
    <srv:operatesOn uuidref="a"/>
  </srv:SV_ServiceIdentification></gmd:identificationInfo>
</gmd:MD_Metadata>`

	doc, err := iso.Parse("svc", []byte(input))
	require.NoError(t, err)
	doc.LinkCoupledResource(doc.CoupledResources()[0], "https://example.org/a.xml")

	out, err := doc.Bytes(false)
	require.NoError(t, err)
	assert.Contains(t, string(out), `xmlns:xlink="http://www.w3.org/1999/xlink"`)

	reparsed, err := iso.Decode("svc", out)
	require.NoError(t, err)
	refs := reparsed.CoupledResources()
	require.Len(t, refs, 1)
	assert.Equal(t, "https://example.org/a.xml", refs[0].Href)
}

func TestStamp(t *testing.T) {
	doc, err := iso.Parse("abc", []byte(waftest.Dataset("abc", "Parks")))
	require.NoError(t, err)

	require.NoError(t, doc.Stamp("2024-01-31"))
	assert.Equal(t, "2024-01-31", doc.Timestamp)

	out, err := doc.Bytes(false)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<gco:DateTime>2024-01-31</gco:DateTime>")

	reparsed, err := iso.Decode("abc", out)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", reparsed.Timestamp)
}

func TestStampEmptyDateStamp(t *testing.T) {
	input := `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd">
  <gmd:dateStamp/>
</gmd:MD_Metadata>`

	doc, err := iso.Decode("e", []byte(input))
	require.NoError(t, err)
	require.NoError(t, doc.Stamp("2024-01-31"))

	out, err := doc.Bytes(false)
	require.NoError(t, err)
	assert.Contains(t, string(out), `xmlns:gco="http://www.isotc211.org/2005/gco"`)
	assert.Contains(t, string(out), "<gco:Date>2024-01-31</gco:Date>")
}

func TestStampMissingDateStamp(t *testing.T) {
	doc, err := iso.Decode("m", []byte(waftest.DatasetWithoutDateStamp("m", "Parks")))
	require.NoError(t, err)

	assert.ErrorIs(t, doc.Stamp("2024-01-31"), iso.ErrNoDateStamp)
}
