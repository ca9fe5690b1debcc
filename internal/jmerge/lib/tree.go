package lib

import (
	"fmt"
	"strconv"

	"github.com/gingerrexayers/jmerge-go/internal/jmerge/types"
)

// NodeKind discriminates the two directory node variants.
type NodeKind int

const (
	// RootNode is the top-level segment contributed by one source archive.
	RootNode NodeKind = iota
	// SubNode is any directory below a RootNode.
	SubNode
)

func (k NodeKind) String() string {
	if k == RootNode {
		return "root"
	}
	return "sub"
}

// DirectoryNode is one directory of the merge tree. Path is the normalized
// slash-separated path; the empty path is an archive's top level.
//
// Source is the contributing archive. Attributes are only set on RootNode;
// Parent is only set on SubNode and is NoNode otherwise.
type DirectoryNode struct {
	ID       types.NodeID
	Kind     NodeKind
	Name     string
	Path     string
	Entries  []FileEntry
	Children map[string]types.NodeID

	Source     types.SourceID
	Attributes []types.Attribute

	Parent types.NodeID
}

// FileEntry is a leaf of the merge tree.
type FileEntry struct {
	Name  string
	Owner types.NodeID
	Ref   types.EntryRef
}

// InternKey maps a directory path contributed by a source archive to the key
// it is interned under. It is the merge tree's only conflict-resolution
// decision: two paths share a node exactly when their keys are equal.
type InternKey func(source types.SourceID, path string) string

// PerArchive interns directories within one source archive only. The same
// path contributed by two archives yields two node lineages, and a file at
// that path is written once per archive.
func PerArchive(source types.SourceID, path string) string {
	return strconv.Itoa(int(source)) + "\x00" + path
}

// MergeTree is the path-indexed structure holding the directory nodes and
// file entries of every ingested archive. Nodes are kept in creation order,
// which is the order they are written in.
type MergeTree struct {
	sources  []types.SourceArchive
	nodes    []*DirectoryNode
	interned map[string]types.NodeID
	roots    map[types.SourceID]types.NodeID
	key      InternKey
}

// NewMergeTree returns an empty tree using the PerArchive policy.
func NewMergeTree() *MergeTree {
	return NewMergeTreeWithPolicy(PerArchive)
}

// NewMergeTreeWithPolicy returns an empty tree interning with key.
func NewMergeTreeWithPolicy(key InternKey) *MergeTree {
	return &MergeTree{
		interned: make(map[string]types.NodeID),
		roots:    make(map[types.SourceID]types.NodeID),
		key:      key,
	}
}

// AddSource registers an archive and returns its id. Ids follow ingestion order.
func (t *MergeTree) AddSource(path string, attrs []types.Attribute) types.SourceID {
	id := types.SourceID(len(t.sources))
	t.sources = append(t.sources, types.SourceArchive{ID: id, Path: path, Attributes: attrs})
	return id
}

// Source returns the archive registered under id.
func (t *MergeTree) Source(id types.SourceID) (types.SourceArchive, error) {
	if id < 0 || int(id) >= len(t.sources) {
		return types.SourceArchive{}, fmt.Errorf("unknown source archive %d", id)
	}
	return t.sources[id], nil
}

// Sources returns every registered archive in ingestion order.
func (t *MergeTree) Sources() []types.SourceArchive {
	return t.sources
}

// Node returns the node with the given id, or nil.
func (t *MergeTree) Node(id types.NodeID) *DirectoryNode {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns every node in creation order.
func (t *MergeTree) Nodes() []*DirectoryNode {
	return t.nodes
}

// CanonicalRoot returns the first root node interned for source, or NoNode
// if the archive has contributed no regular content.
func (t *MergeTree) CanonicalRoot(source types.SourceID) types.NodeID {
	if id, ok := t.roots[source]; ok {
		return id
	}
	return types.NoNode
}

// AuxiliaryRoot returns the root an auxiliary entry is associated with: the
// canonical root of the archive it came from.
func (t *MergeTree) AuxiliaryRoot(entry AuxiliaryEntry) types.NodeID {
	return t.CanonicalRoot(entry.Ref.Source)
}

// Insert adds a regular entry. The directories leading to it are interned,
// the first one being the archive's RootNode, and the entry is appended to
// the last directory. rootCreated reports whether a new RootNode was made.
func (t *MergeTree) Insert(ref types.EntryRef) (entry FileEntry, rootCreated bool, err error) {
	if len(ref.Segments) == 0 {
		return FileEntry{}, false, fmt.Errorf("entry %q has no path segments", ref.Name)
	}
	source, err := t.Source(ref.Source)
	if err != nil {
		return FileEntry{}, false, err
	}
	dirs := ref.Segments[:len(ref.Segments)-1]

	rootName := ""
	if len(dirs) > 0 {
		rootName = dirs[0]
	}
	current, rootCreated := t.intern(source, rootName, rootName, types.NoNode)
	for i := 1; i < len(dirs); i++ {
		path := JoinPath(current.Path, dirs[i])
		current, _ = t.intern(source, dirs[i], path, current.ID)
	}

	entry = FileEntry{
		Name:  ref.Segments[len(ref.Segments)-1],
		Owner: current.ID,
		Ref:   ref,
	}
	current.Entries = append(current.Entries, entry)
	return entry, rootCreated, nil
}

// intern returns the node for path, creating it under parent if needed.
// A NoNode parent makes a RootNode.
func (t *MergeTree) intern(source types.SourceArchive, name, path string, parent types.NodeID) (*DirectoryNode, bool) {
	key := t.key(source.ID, path)
	if id, ok := t.interned[key]; ok {
		return t.nodes[id], false
	}

	node := &DirectoryNode{
		ID:       types.NodeID(len(t.nodes)),
		Name:     name,
		Path:     path,
		Children: make(map[string]types.NodeID),
		Source:   source.ID,
		Parent:   parent,
	}
	if parent == types.NoNode {
		node.Kind = RootNode
		node.Attributes = source.Attributes
		if _, ok := t.roots[source.ID]; !ok {
			t.roots[source.ID] = node.ID
		}
	} else {
		node.Kind = SubNode
		t.nodes[parent].Children[path] = node.ID
	}

	t.nodes = append(t.nodes, node)
	t.interned[key] = node.ID
	return node, true
}

// EntryPath returns the path an entry is written under.
func (t *MergeTree) EntryPath(entry FileEntry) string {
	owner := t.Node(entry.Owner)
	if owner == nil {
		return entry.Name
	}
	return JoinPath(owner.Path, entry.Name)
}
