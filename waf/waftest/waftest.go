// Package waftest builds GeoNetwork-style export archives and ISO 19139
// records for tests.
package waftest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:gco="http://www.isotc211.org/2005/gco" xmlns:srv="http://www.isotc211.org/2005/srv" xmlns:xlink="http://www.w3.org/1999/xlink">
`

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Dataset returns a dataset record titled title.
func Dataset(id, title string) string {
	return header + fmt.Sprintf(`  <gmd:fileIdentifier>
    <gco:CharacterString>%s</gco:CharacterString>
  </gmd:fileIdentifier>
  <gmd:hierarchyLevel>
    <gmd:MD_ScopeCode codeList="http://standards.iso.org/ittf/PubliclyAvailableStandards/ISO_19139_Schemas/resources/codelist/ML_gmxCodelists.xml#MD_ScopeCode" codeListValue="dataset">dataset</gmd:MD_ScopeCode>
  </gmd:hierarchyLevel>
  <gmd:dateStamp>
    <gco:DateTime>2013-06-12T09:30:00</gco:DateTime>
  </gmd:dateStamp>
  <gmd:identificationInfo>
    <gmd:MD_DataIdentification>
      <gmd:citation>
        <gmd:CI_Citation>
          <gmd:title>
            <gco:CharacterString>%s</gco:CharacterString>
          </gmd:title>
        </gmd:CI_Citation>
      </gmd:citation>
    </gmd:MD_DataIdentification>
  </gmd:identificationInfo>
</gmd:MD_Metadata>
`, escaper.Replace(id), escaper.Replace(title))
}

// DatasetWithoutTitle returns a dataset record with no citation title.
func DatasetWithoutTitle(id string) string {
	return header + fmt.Sprintf(`  <gmd:fileIdentifier>
    <gco:CharacterString>%s</gco:CharacterString>
  </gmd:fileIdentifier>
  <gmd:hierarchyLevel>
    <gmd:MD_ScopeCode codeListValue="dataset">dataset</gmd:MD_ScopeCode>
  </gmd:hierarchyLevel>
  <gmd:dateStamp>
    <gco:DateTime>2013-06-12T09:30:00</gco:DateTime>
  </gmd:dateStamp>
</gmd:MD_Metadata>
`, escaper.Replace(id))
}

// DatasetWithoutDateStamp returns a dataset record with no gmd:dateStamp.
func DatasetWithoutDateStamp(id, title string) string {
	return strings.Replace(Dataset(id, title), `  <gmd:dateStamp>
    <gco:DateTime>2013-06-12T09:30:00</gco:DateTime>
  </gmd:dateStamp>
`, "", 1)
}

// Service returns a service record whose SV_ServiceIdentification holds one
// operatesOn per uuidref.
func Service(id string, uuidrefs ...string) string {
	var ops strings.Builder
	for _, ref := range uuidrefs {
		fmt.Fprintf(&ops, "      <srv:operatesOn uuidref=\"%s\"/>\n", escaper.Replace(ref))
	}
	return header + fmt.Sprintf(`  <gmd:fileIdentifier>
    <gco:CharacterString>%s</gco:CharacterString>
  </gmd:fileIdentifier>
  <gmd:hierarchyLevel>
    <gmd:MD_ScopeCode codeList="http://standards.iso.org/ittf/PubliclyAvailableStandards/ISO_19139_Schemas/resources/codelist/ML_gmxCodelists.xml#MD_ScopeCode" codeListValue="service">service</gmd:MD_ScopeCode>
  </gmd:hierarchyLevel>
  <gmd:dateStamp>
    <gco:DateTime>2013-06-12T09:30:00</gco:DateTime>
  </gmd:dateStamp>
  <gmd:identificationInfo>
    <srv:SV_ServiceIdentification>
      <srv:serviceType>
        <gco:LocalName>view</gco:LocalName>
      </srv:serviceType>
%s    </srv:SV_ServiceIdentification>
  </gmd:identificationInfo>
  <gmd:distributionInfo>
    <gmd:MD_Distribution>
      <gmd:transferOptions>
        <gmd:MD_DigitalTransferOptions>
          <gmd:onLine>
            <gmd:CI_OnlineResource>
              <gmd:linkage>
                <gmd:URL>https://maps.example.org/wms?request=GetCapabilities</gmd:URL>
              </gmd:linkage>
              <gmd:description>
                <gco:CharacterString>Web Map Service</gco:CharacterString>
              </gmd:description>
            </gmd:CI_OnlineResource>
          </gmd:onLine>
        </gmd:MD_DigitalTransferOptions>
      </gmd:transferOptions>
    </gmd:MD_Distribution>
  </gmd:distributionInfo>
</gmd:MD_Metadata>
`, escaper.Replace(id), ops.String())
}

// Entry is one file of a test archive.
type Entry struct {
	Name string
	Body string
}

// Record places body where GeoNetwork puts the record of identifier id.
func Record(id, body string) Entry {
	return Entry{Name: id + "/metadata/metadata.xml", Body: body}
}

// WriteArchive writes entries into a zip file under t.TempDir and returns
// its path.
func WriteArchive(t testing.TB, entries ...Entry) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("adding %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("writing %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing archive file: %v", err)
	}
	return p
}

// WriteFile writes body to name under t.TempDir and returns its path.
func WriteFile(t testing.TB, name, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return p
}
