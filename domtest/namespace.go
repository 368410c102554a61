package domtest

import "strings"

// Well-known namespace URIs, pre-bound the way original_source's
// NamespaceResolver pre-binds them (dom/namespace.rs).
const (
	xmlNamespaceURI   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNamespaceURI = "http://www.w3.org/2000/xmlns/"
)

// nsBinding is one (prefix, uri) declaration at a given element depth,
// mirroring original_source's NsBinding.
type nsBinding struct {
	prefix string
	uri    string
}

// namespaceResolver is a stack-based namespace resolver, grounded on
// original_source/dom/namespace.rs's NamespaceResolver: a push_scope /
// declare / resolve / pop_scope API over a flat binding stack, rather than
// a map-per-depth (cheaper to push/pop, and shadowing falls out of
// searching the stack most-recent-first). domtest uses one resolver while
// walking Build's node tree, so every element's resolved namespace URI can
// be computed and cached on the node, unlike package index's View (spec
// §4.5 explicitly leaves namespace resolution unresolved there; domtest is
// the one place the original's behavior is carried forward in full).
type namespaceResolver struct {
	bindings []nsBinding
	depths   []int // bindings[i] was declared at depths[i]
	depth    int
}

func newNamespaceResolver() *namespaceResolver {
	r := &namespaceResolver{}
	r.bindings = append(r.bindings, nsBinding{prefix: "xml", uri: xmlNamespaceURI})
	r.depths = append(r.depths, 0)
	r.bindings = append(r.bindings, nsBinding{prefix: "xmlns", uri: xmlnsNamespaceURI})
	r.depths = append(r.depths, 0)
	return r
}

func (r *namespaceResolver) pushScope() { r.depth++ }

func (r *namespaceResolver) popScope() {
	for len(r.bindings) > 0 && r.depths[len(r.depths)-1] >= r.depth {
		r.bindings = r.bindings[:len(r.bindings)-1]
		r.depths = r.depths[:len(r.depths)-1]
	}
	if r.depth > 0 {
		r.depth--
	}
}

// declare binds prefix (empty for the default namespace) to uri at the
// current scope; xml/xmlns may not be redeclared.
func (r *namespaceResolver) declare(prefix, uri string) {
	if prefix == "xml" || prefix == "xmlns" {
		return
	}
	r.bindings = append(r.bindings, nsBinding{prefix: prefix, uri: uri})
	r.depths = append(r.depths, r.depth)
}

func (r *namespaceResolver) resolve(prefix string) (string, bool) {
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if r.bindings[i].prefix == prefix {
			return r.bindings[i].uri, true
		}
	}
	return "", false
}

// declareFromAttrs scans an element's attributes for xmlns/xmlns:prefix
// declarations and binds them at the current scope. It returns nothing and
// leaves attrs unchanged.
func (r *namespaceResolver) declareFromAttrs(attrs []attrWithName) {
	for _, a := range attrs {
		switch {
		case a.name == "xmlns":
			r.declare("", a.value)
		case strings.HasPrefix(a.name, "xmlns:"):
			r.declare(strings.TrimPrefix(a.name, "xmlns:"), a.value)
		}
	}
}

type attrWithName struct{ name, value string }

// resolveElementNamespace computes name's namespace URI given the
// resolver's current scope (after declareFromAttrs has run for this
// element), per the element's own prefix or the default namespace.
func resolveElementNamespace(r *namespaceResolver, name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		if uri, ok := r.resolve(name[:i]); ok {
			return uri
		}
		return ""
	}
	if uri, ok := r.resolve(""); ok {
		return uri
	}
	return ""
}
