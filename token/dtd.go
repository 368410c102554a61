package token

import "github.com/mkowalczyk/rustyx/scanner"

// dtdState collects DTD declarations found in a DOCTYPE's internal subset
// for post-parse shape and reference validation, grounded on
// original_source/native/rustyxml/src/core/dtd.rs's DtdDeclarations: parse
// first, validate after, matching that file's own note that this mirrors
// xmerl's approach.
type dtdState struct {
	elements  map[string]struct{}
	attlists  map[string][]attDef
	entities  map[string]entityDecl
	peEntities map[string]entityDecl
	notations map[string]struct{}
}

type attDef struct {
	name       string
	notation   []string // populated only for NOTATION-typed attributes
	enumerated bool
}

type entityDecl struct {
	isExternal bool
	value      string
	references []string
}

func newDTDState() *dtdState {
	return &dtdState{
		elements:   map[string]struct{}{},
		attlists:   map[string][]attDef{},
		entities:   map[string]entityDecl{},
		peEntities: map[string]entityDecl{},
		notations:  map[string]struct{}{},
	}
}

// validateDoctype validates a `<!DOCTYPE ...>` body: the external-ID shape
// (SYSTEM "..." | PUBLIC "..." "..."), and, when present, the internal
// subset's declarations and their cross-references.
func (d *dtdState) validateDoctype(body []byte) error {
	i := skipWS(body, 0)
	_, i, ok := readName(body, i)
	if !ok {
		return errString("DOCTYPE requires a root element name")
	}
	i = skipWS(body, i)

	if i < len(body) && (hasWordAt(body, i, "SYSTEM") || hasWordAt(body, i, "PUBLIC")) {
		var err error
		i, err = skipExternalID(body, i)
		if err != nil {
			return err
		}
		i = skipWS(body, i)
	}

	if i < len(body) && body[i] == '[' {
		end := matchBracket(body, i)
		if end < 0 {
			return errString("unterminated internal DTD subset")
		}
		if err := d.parseInternalSubset(body[i+1 : end]); err != nil {
			return err
		}
		i = skipWS(body, end+1)
	}

	if i != len(body) {
		return errString("unexpected content after DOCTYPE external ID / internal subset")
	}
	return d.validate()
}

func skipExternalID(body []byte, i int) (int, error) {
	if hasWordAt(body, i, "SYSTEM") {
		i += len("SYSTEM")
		i = skipWS(body, i)
		_, i2, ok := readQuoted(body, i)
		if !ok {
			return 0, errString("SYSTEM requires a quoted system literal")
		}
		return i2, nil
	}
	i += len("PUBLIC")
	i = skipWS(body, i)
	_, i, ok := readQuoted(body, i)
	if !ok {
		return 0, errString("PUBLIC requires a quoted public id literal")
	}
	i = skipWS(body, i)
	_, i, ok = readQuoted(body, i)
	if !ok {
		return 0, errString("PUBLIC requires a quoted system literal")
	}
	return i, nil
}

// parseInternalSubset splits the internal subset into markup declarations
// and parameter-entity references, dispatching each `<!...>` declaration by
// keyword. Comments (`<!-- -->`) and whitespace between declarations are
// skipped.
func (d *dtdState) parseInternalSubset(subset []byte) error {
	i := 0
	for i < len(subset) {
		i = skipWS(subset, i)
		if i >= len(subset) {
			break
		}
		switch {
		case hasPrefix(subset[i:], "<!--"):
			end := findCommentEnd(subset, i)
			if end < 0 {
				return errString("unterminated comment in internal DTD subset")
			}
			i = end
		case hasPrefix(subset[i:], "<!ELEMENT"):
			end, err := d.parseElementDecl(subset, i)
			if err != nil {
				return err
			}
			i = end
		case hasPrefix(subset[i:], "<!ATTLIST"):
			end, err := d.parseAttlistDecl(subset, i)
			if err != nil {
				return err
			}
			i = end
		case hasPrefix(subset[i:], "<!ENTITY"):
			end, err := d.parseEntityDecl(subset, i)
			if err != nil {
				return err
			}
			i = end
		case hasPrefix(subset[i:], "<!NOTATION"):
			end, err := d.parseNotationDecl(subset, i)
			if err != nil {
				return err
			}
			i = end
		case subset[i] == '%':
			end := indexByteFrom(subset, i, ';')
			if end < 0 {
				return errString("unterminated parameter-entity reference")
			}
			i = end + 1
		default:
			return errString("unrecognized markup declaration in internal DTD subset")
		}
	}
	return nil
}

func findCommentEnd(b []byte, start int) int {
	for i := start + 4; i+2 < len(b); i++ {
		if b[i] == '-' && b[i+1] == '-' && i+2 < len(b) && b[i+2] == '>' {
			return i + 3
		}
	}
	return -1
}

func (d *dtdState) parseElementDecl(subset []byte, start int) (int, error) {
	i := start + len("<!ELEMENT")
	i = skipWS(subset, i)
	name, i2, ok := readName(subset, i)
	if !ok {
		return 0, errString("ELEMENT declaration requires a name")
	}
	i = skipWS(subset, i2)
	gt := indexByteFrom(subset, i, '>')
	if gt < 0 {
		return 0, errString("unterminated ELEMENT declaration")
	}
	if _, exists := d.elements[name]; exists {
		return 0, errString("element type declared more than once: " + name)
	}
	d.elements[name] = struct{}{}
	return gt + 1, nil
}

func (d *dtdState) parseAttlistDecl(subset []byte, start int) (int, error) {
	i := start + len("<!ATTLIST")
	i = skipWS(subset, i)
	elemName, i2, ok := readName(subset, i)
	if !ok {
		return 0, errString("ATTLIST declaration requires an element name")
	}
	i = i2
	gt := indexByteFrom(subset, i, '>')
	if gt < 0 {
		return 0, errString("unterminated ATTLIST declaration")
	}
	defs, err := parseAttDefs(subset[i:gt])
	if err != nil {
		return 0, err
	}
	d.attlists[elemName] = append(d.attlists[elemName], defs...)
	return gt + 1, nil
}

func parseAttDefs(body []byte) ([]attDef, error) {
	var defs []attDef
	i := 0
	for {
		i = skipWS(body, i)
		if i >= len(body) {
			break
		}
		name, i2, ok := readName(body, i)
		if !ok {
			return nil, errString("malformed attribute definition in ATTLIST")
		}
		i = skipWS(body, i2)

		def := attDef{name: name}
		switch {
		case hasWordAt(body, i, "NOTATION"):
			i += len("NOTATION")
			i = skipWS(body, i)
			names, i2, err := readEnumeration(body, i)
			if err != nil {
				return nil, err
			}
			def.notation = names
			i = i2
		case i < len(body) && body[i] == '(':
			_, i2, err := readEnumeration(body, i)
			if err != nil {
				return nil, err
			}
			def.enumerated = true
			i = i2
		default:
			_, i2, ok := readName(body, i)
			if !ok {
				return nil, errString("malformed attribute type in ATTLIST")
			}
			i = i2
		}
		i = skipWS(body, i)

		switch {
		case hasWordAt(body, i, "#REQUIRED"):
			i += len("#REQUIRED")
		case hasWordAt(body, i, "#IMPLIED"):
			i += len("#IMPLIED")
		case hasWordAt(body, i, "#FIXED"):
			i += len("#FIXED")
			i = skipWS(body, i)
			_, i2, ok := readQuoted(body, i)
			if !ok {
				return nil, errString("#FIXED requires a quoted default value")
			}
			i = i2
		default:
			_, i2, ok := readQuoted(body, i)
			if !ok {
				return nil, errString("attribute default must be #REQUIRED, #IMPLIED, #FIXED, or a quoted literal")
			}
			i = i2
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func readEnumeration(body []byte, i int) ([]string, int, error) {
	if i >= len(body) || body[i] != '(' {
		return nil, 0, errString("expected '(' to begin enumeration/notation list")
	}
	end := matchBracketByte(body, i, '(', ')')
	if end < 0 {
		return nil, 0, errString("unterminated enumeration/notation list")
	}
	var names []string
	inner := body[i+1 : end]
	j := 0
	for j < len(inner) {
		j = skipWS(inner, j)
		if j >= len(inner) {
			break
		}
		if inner[j] == '|' {
			j++
			continue
		}
		name, j2, ok := readNmtoken(inner, j)
		if !ok {
			return nil, 0, errString("malformed token in enumeration/notation list")
		}
		names = append(names, name)
		j = j2
	}
	return names, end + 1, nil
}

func (d *dtdState) parseEntityDecl(subset []byte, start int) (int, error) {
	i := start + len("<!ENTITY")
	i = skipWS(subset, i)
	isPE := false
	if i < len(subset) && subset[i] == '%' {
		isPE = true
		i++
		i = skipWS(subset, i)
	}
	name, i2, ok := readName(subset, i)
	if !ok {
		return 0, errString("ENTITY declaration requires a name")
	}
	i = skipWS(subset, i2)

	decl := entityDecl{}
	if hasWordAt(subset, i, "SYSTEM") || hasWordAt(subset, i, "PUBLIC") {
		decl.isExternal = true
		var err error
		i, err = skipExternalID(subset, i)
		if err != nil {
			return 0, err
		}
		i = skipWS(subset, i)
		if !isPE && hasWordAt(subset, i, "NDATA") {
			i += len("NDATA")
			i = skipWS(subset, i)
			ndataName, i2, ok := readName(subset, i)
			if !ok {
				return 0, errString("NDATA requires a notation name")
			}
			_ = ndataName
			i = i2
		}
	} else {
		value, i2, ok := readQuoted(subset, i)
		if !ok {
			return 0, errString("internal entity declaration requires a quoted value")
		}
		decl.value = value
		decl.references = extractEntityReferences(value)
		i = i2
	}
	i = skipWS(subset, i)
	gt := indexByteFrom(subset, i, '>')
	if gt < 0 {
		return 0, errString("unterminated ENTITY declaration")
	}

	target := d.entities
	if isPE {
		target = d.peEntities
	}
	if _, exists := target[name]; !exists {
		target[name] = decl
	}
	return gt + 1, nil
}

func (d *dtdState) parseNotationDecl(subset []byte, start int) (int, error) {
	i := start + len("<!NOTATION")
	i = skipWS(subset, i)
	name, i2, ok := readName(subset, i)
	if !ok {
		return 0, errString("NOTATION declaration requires a name")
	}
	i = skipWS(subset, i2)
	if !hasWordAt(subset, i, "SYSTEM") && !hasWordAt(subset, i, "PUBLIC") {
		return 0, errString("NOTATION declaration requires SYSTEM or PUBLIC")
	}
	var err error
	i, err = skipNotationID(subset, i)
	if err != nil {
		return 0, err
	}
	i = skipWS(subset, i)
	gt := indexByteFrom(subset, i, '>')
	if gt < 0 {
		return 0, errString("unterminated NOTATION declaration")
	}
	if _, exists := d.notations[name]; exists {
		return 0, errString("notation declared more than once: " + name)
	}
	d.notations[name] = struct{}{}
	return gt + 1, nil
}

// skipNotationID is like skipExternalID but PUBLIC's system literal is
// optional for a notation (a PubidLiteral alone is valid).
func skipNotationID(body []byte, i int) (int, error) {
	if hasWordAt(body, i, "SYSTEM") {
		i += len("SYSTEM")
		i = skipWS(body, i)
		_, i2, ok := readQuoted(body, i)
		if !ok {
			return 0, errString("SYSTEM requires a quoted system literal")
		}
		return i2, nil
	}
	i += len("PUBLIC")
	i = skipWS(body, i)
	_, i, ok := readQuoted(body, i)
	if !ok {
		return 0, errString("PUBLIC requires a quoted public id literal")
	}
	save := i
	i = skipWS(body, i)
	if i < len(body) && (body[i] == '"' || body[i] == '\'') {
		_, i2, ok := readQuoted(body, i)
		if ok {
			return i2, nil
		}
	}
	return save, nil
}

// validate runs the post-parse cross-reference checks: entity reference
// recursion, and NOTATION-typed attributes referencing declared notations.
func (d *dtdState) validate() error {
	for name := range d.entities {
		if d.hasRecursion(name) {
			return errString("entity '" + name + "' references itself (directly or indirectly)")
		}
	}
	for _, defs := range d.attlists {
		for _, def := range defs {
			for _, n := range def.notation {
				if _, ok := d.notations[n]; !ok {
					return errString("notation '" + n + "' used in attribute but not declared")
				}
			}
		}
	}
	return nil
}

func (d *dtdState) hasRecursion(name string) bool {
	visited := map[string]bool{}
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			if cur == name {
				return true
			}
			continue
		}
		visited[cur] = true
		if decl, ok := d.entities[cur]; ok {
			stack = append(stack, decl.references...)
		}
	}
	return false
}

// extractEntityReferences scans an internal entity's replacement text for
// general-entity references (not character references).
func extractEntityReferences(value string) []string {
	var refs []string
	b := []byte(value)
	i := 0
	for i < len(b) {
		if b[i] == '&' && i+1 < len(b) && b[i+1] != '#' {
			i++
			start := i
			for i < len(b) && b[i] != ';' {
				i++
			}
			if i < len(b) {
				refs = append(refs, string(b[start:i]))
			}
		}
		i++
	}
	return refs
}

// --- small shared lexical helpers over raw DOCTYPE byte ranges ---

// errString is a constant-message error used by the declaration checks.
type errString string

func (e errString) Error() string { return string(e) }

func skipWS(b []byte, i int) int {
	for i < len(b) && scanner.IsWhitespace(b[i]) {
		i++
	}
	return i
}

func hasWordAt(b []byte, i int, word string) bool {
	if i+len(word) > len(b) {
		return false
	}
	for k := 0; k < len(word); k++ {
		if b[i+k] != word[k] {
			return false
		}
	}
	return true
}

func readName(b []byte, i int) (string, int, bool) {
	sc := scanner.New(b)
	sc.SetPos(i)
	start, end, ok := sc.ReadName()
	if !ok {
		return "", i, false
	}
	return string(b[start:end]), end, true
}

func readNmtoken(b []byte, i int) (string, int, bool) {
	start := i
	for i < len(b) && isNmtokenByte(b[i]) {
		i++
	}
	if i == start {
		return "", i, false
	}
	return string(b[start:i]), i, true
}

func isNmtokenByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
		b == '_' || b == '-' || b == '.' || b == ':' || b >= 0x80
}

func readQuoted(b []byte, i int) (string, int, bool) {
	if i >= len(b) || (b[i] != '"' && b[i] != '\'') {
		return "", i, false
	}
	quote := b[i]
	i++
	start := i
	for i < len(b) && b[i] != quote {
		i++
	}
	if i >= len(b) {
		return "", i, false
	}
	return string(b[start:i]), i + 1, true
}

func indexByteFrom(b []byte, start int, c byte) int {
	for i := start; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}

func matchBracket(b []byte, openIdx int) int {
	depth := 1
	for i := openIdx + 1; i < len(b); i++ {
		switch b[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchBracketByte(b []byte, openIdx int, open, close byte) int {
	depth := 1
	for i := openIdx + 1; i < len(b); i++ {
		switch b[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
