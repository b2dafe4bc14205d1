package rendercmd

// FeatureGates lets callers switch document rendering off at runtime.
type FeatureGates struct {
	DocumentsEnabled func() bool
}

func (g FeatureGates) documentsEnabled() bool {
	if g.DocumentsEnabled == nil {
		return true
	}
	return g.DocumentsEnabled()
}
