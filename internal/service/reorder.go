package service

// Reorder arranges mapping handles in catalog order. Handles the catalog does not list keep their
// relative order and follow the ordered block. Duplicate inputs are collapsed to their first occurrence.
func Reorder(mappingHandles []string, catalogOrdered []string) []string {
	remaining := make(map[string]bool, len(mappingHandles))
	unique := make([]string, 0, len(mappingHandles))
	for _, h := range mappingHandles {
		if _, ok := remaining[h]; ok {
			continue
		}
		remaining[h] = true
		unique = append(unique, h)
	}

	out := make([]string, 0, len(unique))
	for _, h := range catalogOrdered {
		if remaining[h] {
			out = append(out, h)
			remaining[h] = false
		}
	}
	for _, h := range unique {
		if remaining[h] {
			out = append(out, h)
		}
	}
	return out
}
