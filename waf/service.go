package waf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/geowaf/iso"
)

// ServiceCaption replaces the online resource description of the service
// record.
const ServiceCaption = "INSPIRE Service GetCapabilities URL"

// LinkURL is the address a dataset file is served from inside the WAF.
func LinkURL(baseURL, stem string) string {
	return strings.TrimRight(baseURL, "/") + "/" + stem + ".xml"
}

// ServiceRewrite summarises a RewriteService call.
type ServiceRewrite struct {
	Resolved    []string
	Diagnostics []Diagnostic
}

// RewriteService points every resolvable coupled resource of doc at the
// dataset file it names. A resolved reference is removed and a new
// operatesOn carrying xlink:href="<baseURL>/<stem>.xml" is appended to the
// service identification block. Unresolved references stay where they are
// and are reported once each; references without a uuidref are left alone.
func RewriteService(doc *iso.Document, ids *IdentifierMap, baseURL string, logger *slog.Logger) ServiceRewrite {
	if logger == nil {
		logger = slog.Default()
	}

	var out ServiceRewrite
	for _, ref := range doc.CoupledResources() {
		if ref.UUIDRef == "" {
			continue
		}
		stem, ok := ids.Lookup(ref.UUIDRef)
		if !ok {
			logger.Warn("coupled resource unresolved", "uuidref", ref.UUIDRef)
			out.Diagnostics = append(out.Diagnostics, Diagnostic{
				Kind:    ReferenceResolutionWarning,
				Subject: ref.UUIDRef,
				Message: fmt.Sprintf("coupled resource %s unresolved", ref.UUIDRef),
			})
			continue
		}

		href := LinkURL(baseURL, stem)
		doc.LinkCoupledResource(ref, href)
		out.Resolved = append(out.Resolved, ref.UUIDRef)
		logger.Debug("linked coupled resource", "uuidref", ref.UUIDRef, "href", href)
	}
	return out
}
