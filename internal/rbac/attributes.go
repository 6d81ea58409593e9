package rbac

import "strings"

// FieldPath is a pre-split dotted field path ("profile.salary" -> ["profile",
// "salary"]).
type FieldPath []string

// AttributeRule is one parsed entry of a permission's attribute mask: either
// allow-all ("*") or a deny rule ("!field", "!nested.field"). Entries that are
// neither are kept as inert rules so that round-tripping a mask through the
// catalog preserves it.
type AttributeRule struct {
	AllowAll bool
	Deny     FieldPath
}

// ParseRules parses a raw attribute mask once, at permission-load time, so the
// filter never re-parses strings per call.
func ParseRules(mask []string) []AttributeRule {
	rules := make([]AttributeRule, 0, len(mask))
	for _, entry := range mask {
		switch {
		case entry == "*":
			rules = append(rules, AttributeRule{AllowAll: true})
		case strings.HasPrefix(entry, "!"):
			rules = append(rules, AttributeRule{Deny: strings.Split(entry[1:], ".")})
		default:
			// Plain allow-list entries beyond "*" are not enforced.
			rules = append(rules, AttributeRule{})
		}
	}
	return rules
}

// Filter applies an attribute mask to a response payload, returning a copy
// with the denied fields removed. An empty payload, an empty mask, or a mask
// containing "*" returns the payload unchanged. The top-level map is copied;
// nested objects are pruned in place, so callers must not rely on deep
// immutability of the input.
func Filter(payload map[string]interface{}, mask []string) map[string]interface{} {
	return FilterRules(payload, ParseRules(mask))
}

// FilterRules is Filter over a pre-parsed mask.
func FilterRules(payload map[string]interface{}, rules []AttributeRule) map[string]interface{} {
	if len(payload) == 0 || len(rules) == 0 {
		return payload
	}
	for _, r := range rules {
		if r.AllowAll {
			return payload
		}
	}

	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	for _, r := range rules {
		if len(r.Deny) > 0 {
			deletePath(out, r.Deny)
		}
	}
	return out
}

// deletePath removes the field addressed by path, walking nested maps segment
// by segment. A missing intermediate segment is a no-op, not an error.
func deletePath(m map[string]interface{}, path FieldPath) {
	cur := m
	for _, seg := range path[:len(path)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, path[len(path)-1])
}
