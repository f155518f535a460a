package events

// RawKind is a low-level notification kind reported by the host.
type RawKind string

const (
	RawTreeUpdate         RawKind = "tree_update"
	RawSubtreeUpdate      RawKind = "subtree_update"
	RawNodeUpdate         RawKind = "node_update"
	RawAddNode            RawKind = "add_node"
	RawCopyNode           RawKind = "copy_node"
	RawFreeNode           RawKind = "free_node"
	RawAddLink            RawKind = "add_link_to_node"
	RawNodePropertyUpdate RawKind = "node_property_update"
	RawUndo               RawKind = "undo"
	RawFrameChange        RawKind = "frame_change"
)

// Kind is a normalized event kind.
type Kind string

const (
	KindTreeUpdate     Kind = "tree_update"
	KindNodesAdded     Kind = "nodes_added"
	KindNodesCopied    Kind = "nodes_copied"
	KindNodesRemoved   Kind = "nodes_removed"
	KindLinksChanged   Kind = "links_changed"
	KindPropertyUpdate Kind = "property_update"
	KindUndo           Kind = "undo"
	KindFrameChange    Kind = "frame_change"
)

// terminators end a wave.
var terminators = map[RawKind]struct{}{
	RawTreeUpdate:         {},
	RawNodePropertyUpdate: {},
	RawSubtreeUpdate:      {},
	RawUndo:               {},
	RawFrameChange:        {},
}

// IsTerminator reports whether kind ends a wave.
func IsTerminator(kind RawKind) bool {
	_, ok := terminators[kind]
	return ok
}

// IsTrivial reports whether kind is dropped before buffering.
func IsTrivial(kind RawKind) bool {
	return kind == RawNodeUpdate
}

// Table maps every raw kind to exactly one normalized kind.
type Table map[RawKind]Kind

// DefaultTable returns the mapping for every RawKind this package defines.
func DefaultTable() Table {
	return Table{
		RawTreeUpdate:         KindTreeUpdate,
		RawSubtreeUpdate:      KindTreeUpdate,
		RawNodeUpdate:         KindPropertyUpdate,
		RawAddNode:            KindNodesAdded,
		RawCopyNode:           KindNodesCopied,
		RawFreeNode:           KindNodesRemoved,
		RawAddLink:            KindLinksChanged,
		RawNodePropertyUpdate: KindPropertyUpdate,
		RawUndo:               KindUndo,
		RawFrameChange:        KindFrameChange,
	}
}
