package types

// SourceID identifies one ingested archive by its ingestion position.
type SourceID int

// NodeID identifies a directory node by its creation position in the merge tree.
type NodeID int

// NoNode is used where a node reference is absent.
const NoNode NodeID = -1

// Attribute is one main-section manifest attribute.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// SourceArchive describes one input archive. The archive itself is only
// open while it is being ingested or streamed, so only its path is kept.
type SourceArchive struct {
	ID         SourceID
	Path       string
	Attributes []Attribute
}

// EntryRef points at one entry inside a SourceArchive. Index is the
// position in the archive's central directory; Name is the raw entry name
// and is used to verify the position when the archive is reopened.
type EntryRef struct {
	Source   SourceID
	Index    int
	Name     string
	Segments []string
}
