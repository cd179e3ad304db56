package pathmap

import (
	"path"
	"sort"
	"strings"
)

// Alias is one entry of the alias table.
type Alias struct {
	Prefix string
	Target string
}

// Mapper resolves logical paths against a fixed alias table.
// A Mapper is immutable and safe for concurrent use.
type Mapper struct {
	aliases []Alias
}

// New builds a Mapper from an alias -> base directory table.
// Empty prefixes are ignored.
func New(mapped map[string]string) *Mapper {
	aliases := make([]Alias, 0, len(mapped))
	for prefix, target := range mapped {
		prefix = normalizePrefix(prefix)
		if prefix == "" {
			continue
		}
		aliases = append(aliases, Alias{Prefix: prefix, Target: target})
	}

	// Longest prefix first; ties broken lexically to keep ordering stable.
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i].Prefix) != len(aliases[j].Prefix) {
			return len(aliases[i].Prefix) > len(aliases[j].Prefix)
		}
		return aliases[i].Prefix < aliases[j].Prefix
	})

	return &Mapper{aliases: aliases}
}

// Aliases returns the alias table in precedence order.
func (m *Mapper) Aliases() []Alias {
	out := make([]Alias, len(m.aliases))
	copy(out, m.aliases)
	return out
}

// Map rewrites logical when it starts with a configured alias. The second
// return value reports whether an alias matched; when it is false the path
// is returned unchanged.
func (m *Mapper) Map(logical string) (string, bool) {
	if m == nil {
		return logical, false
	}
	slashed := strings.ReplaceAll(logical, "\\", "/")
	for _, alias := range m.aliases {
		rest, ok := cutAlias(slashed, alias.Prefix)
		if !ok {
			continue
		}
		if rest == "" {
			return alias.Target, true
		}
		return path.Join(strings.ReplaceAll(alias.Target, "\\", "/"), rest), true
	}
	return logical, false
}

// Map is the functional form of (*Mapper).Map for one-off lookups.
func Map(logical string, mapped map[string]string) string {
	out, _ := New(mapped).Map(logical)
	return out
}

// cutAlias returns what follows prefix in p. The root alias "/" matches
// every absolute path.
func cutAlias(p, prefix string) (string, bool) {
	if prefix == "/" {
		if strings.HasPrefix(p, "/") {
			return strings.TrimLeft(p, "/"), true
		}
		return "", false
	}
	if p == prefix {
		return "", true
	}
	if strings.HasPrefix(p, prefix+"/") {
		return strings.TrimLeft(p[len(prefix):], "/"), true
	}
	return "", false
}

func normalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	trimmed := strings.TrimRight(prefix, "/")
	if trimmed == "" && prefix != "" {
		return "/"
	}
	return trimmed
}
