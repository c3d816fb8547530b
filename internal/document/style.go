package document

import "strings"

type declaration struct {
	property string
	value    string
}

// inlineStyle is an ordered view of a style attribute
type inlineStyle []declaration

func parseStyle(s string) inlineStyle {
	var out inlineStyle
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		out = out.set(prop, val)
	}
	return out
}

func (s inlineStyle) get(prop string) string {
	for _, d := range s {
		if d.property == prop {
			return d.value
		}
	}
	return ""
}

func (s inlineStyle) set(prop, val string) inlineStyle {
	for i, d := range s {
		if d.property == prop {
			s[i].value = val
			return s
		}
	}
	return append(s, declaration{property: prop, value: val})
}

func (s inlineStyle) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.property+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// classRules collects the declarations of every rule in css whose selector
// targets class. Later rules override earlier ones. At-rule wrappers such
// as @media are flattened.
func classRules(css, class string) inlineStyle {
	var out inlineStyle
	css = stripComments(css)
	for _, chunk := range strings.Split(css, "}") {
		open := strings.LastIndex(chunk, "{")
		if open < 0 {
			continue
		}
		selectors := chunk[:open]
		if i := strings.LastIndex(selectors, "{"); i >= 0 {
			selectors = selectors[i+1:]
		}
		if !targetsClass(selectors, class) {
			continue
		}
		for _, d := range parseStyle(chunk[open+1:]) {
			out = out.set(d.property, d.value)
		}
	}
	return out
}

// targetsClass reports whether one selector of the list has class on its
// subject compound, without pseudo-classes
func targetsClass(selectors, class string) bool {
	for _, sel := range strings.Split(selectors, ",") {
		fields := strings.FieldsFunc(sel, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '>' || r == '+' || r == '~'
		})
		if len(fields) == 0 {
			continue
		}
		subject := fields[len(fields)-1]
		if strings.ContainsAny(subject, ":[") {
			continue
		}
		for _, c := range strings.Split(subject, ".")[1:] {
			if c == class {
				return true
			}
		}
	}
	return false
}

func stripComments(css string) string {
	var b strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			b.WriteString(css)
			return b.String()
		}
		b.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		css = css[start+2+end+2:]
	}
}
