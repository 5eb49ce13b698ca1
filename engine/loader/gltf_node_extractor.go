package loader

// gltfExtractNodeRotation returns the rotation quaternion (x, y, z, w) of node 0, or nil.
// Node 0 is used whatever order the scenes list their roots in.
func gltfExtractNodeRotation(doc *gltfDocument) *[4]float64 {
	if len(doc.Nodes) == 0 || doc.Nodes[0].Rotation == nil {
		return nil
	}
	q := *doc.Nodes[0].Rotation
	return &q
}

// gltfExtractModelName derives a model name from the default scene or a path fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_model"
}
