package raml

// DocumentStats contains statistical information about a resolved document
type DocumentStats struct {
	PathCount           int // Number of distinct resource paths
	MethodCount         int // Number of resource nodes with an HTTP method
	TraitCount          int // Number of declared traits
	ResourceTypeCount   int // Number of declared resource types
	SecuritySchemeCount int // Number of declared security schemes
	TypeCount           int // Number of declared data types
	FindingCount        int // Number of collected findings
}

// GetDocumentStats returns statistics for a resolved document
func GetDocumentStats(root *RootNode) DocumentStats {
	if root == nil {
		return DocumentStats{}
	}
	stats := DocumentStats{
		TraitCount:          len(root.Traits),
		SecuritySchemeCount: len(root.SecuritySchemes),
		TypeCount:           len(root.Types),
		FindingCount:        root.findings.Len(),
	}

	paths := make(map[string]bool)
	for _, res := range root.Resources {
		paths[res.Path] = true
		if res.Method != "" {
			stats.MethodCount++
		}
	}
	stats.PathCount = len(paths)

	names := make(map[string]bool)
	for _, rt := range root.ResourceTypes {
		names[rt.Name] = true
	}
	stats.ResourceTypeCount = len(names)

	return stats
}
