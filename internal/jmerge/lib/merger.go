package lib

import (
	"fmt"
	"strings"

	"github.com/cevaris/ordered_map"
	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
)

// Retention decides whether an existing source attribute reaches the output.
type Retention int

const (
	Keep Retention = iota
	Skip
)

func (r Retention) String() string {
	if r == Skip {
		return "skip"
	}
	return "keep"
}

// ParseRetention parses "keep" or "skip".
func ParseRetention(s string) (Retention, error) {
	switch strings.TrimSpace(s) {
	case "keep":
		return Keep, nil
	case "skip":
		return Skip, nil
	default:
		return Keep, fmt.Errorf("unknown retention %q, want keep or skip", s)
	}
}

// ManifestPolicy filters the merged main attributes and adds new ones. The
// zero value keeps every attribute and adds nothing.
type ManifestPolicy struct {
	Default       Retention
	NewAttributes []types.Attribute

	overrides map[string]Retention
}

// SetOverride sets the retention of one attribute name, case-insensitively.
func (p *ManifestPolicy) SetOverride(name string, r Retention) {
	if p.overrides == nil {
		p.overrides = make(map[string]Retention)
	}
	p.overrides[strings.ToLower(name)] = r
}

// Overrides returns the number of per-attribute overrides.
func (p *ManifestPolicy) Overrides() int {
	return len(p.overrides)
}

// Allows reports whether an existing attribute is retained.
func (p *ManifestPolicy) Allows(name string) bool {
	if r, ok := p.overrides[strings.ToLower(name)]; ok {
		return r == Keep
	}
	return p.Default == Keep
}

// AuxiliaryEntry is an entry under META-INF/ other than the manifest. It is
// kept out of the directory tree and written after all regular content.
type AuxiliaryEntry struct {
	Path string
	Ref  types.EntryRef
}

// ManifestMerger accumulates main attributes and auxiliary entries across
// archives. In both maps the first writer of a key wins.
type ManifestMerger struct {
	policy ManifestPolicy
	// attrs maps the lower-cased attribute name to its types.Attribute.
	attrs *ordered_map.OrderedMap
	// aux maps the entry path to its AuxiliaryEntry.
	aux *ordered_map.OrderedMap
}

func NewManifestMerger(policy ManifestPolicy) *ManifestMerger {
	return &ManifestMerger{
		policy: policy,
		attrs:  ordered_map.NewOrderedMap(),
		aux:    ordered_map.NewOrderedMap(),
	}
}

// MergeMainAttributes inserts every attribute whose name is not present yet.
// Existing names are left untouched. Names compare case-insensitively.
func (m *ManifestMerger) MergeMainAttributes(attrs []types.Attribute) {
	for _, attr := range attrs {
		key := strings.ToLower(attr.Name)
		if _, exists := m.attrs.Get(key); exists {
			continue
		}
		m.attrs.Set(key, attr)
	}
}

// MergeAuxiliary inserts entry unless its path is already present. It
// reports whether the entry was inserted.
func (m *ManifestMerger) MergeAuxiliary(entry AuxiliaryEntry) bool {
	if _, exists := m.aux.Get(entry.Path); exists {
		return false
	}
	m.aux.Set(entry.Path, entry)
	return true
}

// Attributes returns the merged main attributes in insertion order, before
// the policy is applied.
func (m *ManifestMerger) Attributes() []types.Attribute {
	attrs := make([]types.Attribute, 0, m.attrs.Len())
	iter := m.attrs.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		attrs = append(attrs, kv.Value.(types.Attribute))
	}
	return attrs
}

// Auxiliary returns the auxiliary entries in insertion order.
func (m *ManifestMerger) Auxiliary() []AuxiliaryEntry {
	entries := make([]AuxiliaryEntry, 0, m.aux.Len())
	iter := m.aux.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		entries = append(entries, kv.Value.(AuxiliaryEntry))
	}
	return entries
}

// BuildOutputManifest returns a fresh attribute list for the output
// manifest: the version marker first, then the merged attributes the policy
// retains, then the policy's new attributes. A new attribute replaces a
// merged one of the same name in place. The version marker cannot be
// overridden by either.
func (m *ManifestMerger) BuildOutputManifest() []types.Attribute {
	out := []types.Attribute{{Name: ManifestVersionAttr, Value: ManifestVersion}}
	versionKey := strings.ToLower(ManifestVersionAttr)
	index := make(map[string]int)

	for _, attr := range m.Attributes() {
		key := strings.ToLower(attr.Name)
		if key == versionKey || !m.policy.Allows(attr.Name) {
			continue
		}
		index[key] = len(out)
		out = append(out, attr)
	}
	for _, attr := range m.policy.NewAttributes {
		key := strings.ToLower(attr.Name)
		if key == versionKey {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Value = attr.Value
			continue
		}
		index[key] = len(out)
		out = append(out, attr)
	}
	return out
}
