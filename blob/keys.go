package blob

import (
	"fmt"
	"strings"

	"github.com/poiesic/lexit/core"
)

// Namespace prefixes, one per stage output.
const (
	NamespaceRaw      = "raw"
	NamespaceParsed   = "parsed"
	NamespaceChunks   = "chunks"
	NamespaceEmbedded = "embedded"
	NamespaceIndexed  = "indexed"

	namespaceManifest = "manifest"
)

// StageNamespace returns the namespace a stage writes its outputs to.
func StageNamespace(stage core.Stage) string {
	switch stage {
	case core.StageFetch:
		return NamespaceRaw
	case core.StageParse:
		return NamespaceParsed
	case core.StageChunk:
		return NamespaceChunks
	case core.StageEmbed:
		return NamespaceEmbedded
	case core.StageIndex:
		return NamespaceIndexed
	default:
		return "unknown"
	}
}

// StageKey builds the output key for one document at one stage.
// Format: namespace/partition/id
func StageKey(stage core.Stage, p core.Partition, id core.DocID) string {
	return StageNamespace(stage) + "/" + string(p) + "/" + string(id)
}

// StagePrefix builds the listing prefix for a stage's outputs in one
// partition. The trailing separator keeps "2024" from matching "20241".
func StagePrefix(stage core.Stage, p core.Partition) string {
	return StageNamespace(stage) + "/" + string(p) + "/"
}

// ManifestKey builds the checkpoint mark key for one document at one stage.
// Format: manifest/stage/partition/id
func ManifestKey(stage core.Stage, p core.Partition, id core.DocID) string {
	return namespaceManifest + "/" + stage.String() + "/" + string(p) + "/" + string(id)
}

// DocIDFromKey extracts the document id from a blob key (its final segment).
func DocIDFromKey(key string) (core.DocID, error) {
	i := strings.LastIndexByte(key, '/')
	if i < 0 || i == len(key)-1 {
		return "", fmt.Errorf("%w: %q has no id segment", ErrInvalidKey, key)
	}
	return core.DocID(key[i+1:]), nil
}
