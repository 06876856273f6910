package rules

import "strings"

// SelectCode picks the single representative denial code and its
// description out of a record's delimited code and description lists.
//
// Selection order:
//  1. CO109 or PR109 present → CO109 wins outright.
//  2. CO96 and OA97 co-occur → CO96.
//  3. Otherwise drop the secondary codes and take the first code whose
//     prefix matches the priority order, else the first remaining code
//     (from the undropped list when the drop emptied it).
//
// The description is looked up by the selected code's position in the
// cleaned code list, falling back to the first description, then Missing.
func (rs *RuleSet) SelectCode(rawCodes, rawDescs string) (string, string) {
	codes := ParseCodes(rawCodes)
	descs := ParseDescriptions(rawDescs)

	if len(codes) == 0 {
		return Missing, Missing
	}

	kept := codes[:0:0]
	for _, c := range codes {
		if !rs.trivial[c] {
			kept = append(kept, c)
		}
	}
	codes = kept

	selected := rs.pick(codes)
	return selected, describe(selected, codes, descs)
}

func (rs *RuleSet) pick(codes []string) string {
	if contains(codes, "CO109") || contains(codes, "PR109") {
		return "CO109"
	}
	if contains(codes, "CO96") && contains(codes, "OA97") {
		return "CO96"
	}

	filtered := codes[:0:0]
	for _, c := range codes {
		if !rs.secondary[c] {
			filtered = append(filtered, c)
		}
	}

	for _, prefix := range rs.PrefixPriority {
		for _, c := range filtered {
			if strings.HasPrefix(c, prefix) {
				return c
			}
		}
	}

	// No priority prefix matched: first remaining code, falling back to
	// the unfiltered list when the secondary exclusions emptied it.
	if len(filtered) > 0 {
		return filtered[0]
	}
	if len(codes) > 0 {
		return codes[0]
	}
	return Missing
}

// describe resolves the description positionally: the selected code's
// index in the cleaned code list, else the first description.
func describe(selected string, codes, descs []string) string {
	if len(descs) == 0 {
		return Missing
	}
	for i, c := range codes {
		if c == selected {
			if i < len(descs) {
				return descs[i]
			}
			break
		}
	}
	return descs[0]
}

func contains(codes []string, want string) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}
