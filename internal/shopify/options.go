package shopify

import "github.com/jafarshop/gradeoverlay/internal/domain"

const (
	optionSize      = "size"
	optionSizeType  = "size type"
	optionSizeRange = "size range"
)

// optionIndex maps a folded option name to its distinct non-empty values in first-seen order
type optionIndex map[string][]string

func buildOptionIndex(variants []variantNode) optionIndex {
	idx := optionIndex{}
	seen := map[string]map[string]struct{}{}
	for _, v := range variants {
		for _, opt := range v.SelectedOptions {
			name := domain.FoldOptionName(opt.Name)
			if name == "" || opt.Value == "" {
				continue
			}
			if seen[name] == nil {
				seen[name] = map[string]struct{}{}
			}
			if _, ok := seen[name][opt.Value]; ok {
				continue
			}
			seen[name][opt.Value] = struct{}{}
			idx[name] = append(idx[name], opt.Value)
		}
	}
	return idx
}

func (idx optionIndex) values(name string) []string {
	return idx[domain.FoldOptionName(name)]
}

// first returns the first non-empty value seen for the option
func (idx optionIndex) first(name string) string {
	if vals := idx.values(name); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
