// SPDX-License-Identifier: MPL-2.0

package which

// NormalizeExtraPath turns a loosely typed extra path into a directory list.
//
// A string is one directory and is never split. A []string or a []any holding
// only strings is used as is, minus empty entries. Anything else, including nil
// and a []any with a non-string element, means no extra path.
func NormalizeExtraPath(extra any) []string {
	switch v := extra.(type) {
	case string:
		return nonEmpty([]string{v})
	case []string:
		return nonEmpty(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return nonEmpty(out)
	default:
		return nil
	}
}

func nonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
