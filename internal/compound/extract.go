package compound

import "strings"

const (
	// DefaultPrefix is the leading character of recognized compound IDs (KEGG style, e.g. C00022).
	DefaultPrefix = "C"
	// DefaultDelimiter separates several IDs packed into a single cell.
	DefaultDelimiter = ", "
)

// ExtractOptions controls which raw values are recognized as compound IDs.
type ExtractOptions struct {
	Prefix    string
	Delimiter string
}

// DefaultExtractOptions returns the prefix/delimiter used by KEGG-annotated result files.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Prefix: DefaultPrefix, Delimiter: DefaultDelimiter}
}

// Extract derives the canonical identifier set from raw cell values.
//
// Empty cells are skipped. Values not starting with the prefix are discarded
// before splitting, so a packed cell only contributes when its first token
// is an ID. Each split token is filtered by the prefix again.
func Extract(raw []string, opt ExtractOptions) Set {
	if opt.Prefix == "" {
		opt.Prefix = DefaultPrefix
	}
	if opt.Delimiter == "" {
		opt.Delimiter = DefaultDelimiter
	}
	unique := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		if v == "" {
			continue
		}
		unique[v] = struct{}{}
	}
	out := make(Set)
	for v := range unique {
		if !strings.HasPrefix(v, opt.Prefix) {
			continue
		}
		if !strings.Contains(v, opt.Delimiter) {
			out.Add(v)
			continue
		}
		for _, tok := range strings.Split(v, opt.Delimiter) {
			if strings.HasPrefix(tok, opt.Prefix) {
				out.Add(tok)
			}
		}
	}
	return out
}
