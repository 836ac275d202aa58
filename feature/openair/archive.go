package openair

import "strings"

// SelectMember picks the OpenAIR file of a snapshot archive, preferring the
// isolated SeeYou export.
func SelectMember(names []string) (string, bool) {
	var first string
	for _, name := range names {
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		if strings.Contains(name, "/isolated/") && strings.Contains(name, "seeyou") {
			return name, true
		}
		if first == "" {
			first = name
		}
	}
	return first, first != ""
}
