package compliance

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in feature checks. Each follows the same contract: desired subtree
// from the merged validation spec, actual subtree from facts, one Check per
// leaf so partial failure stays visible.

func init() {
	Register("ospf", checkOSPF, Skeleton{"nbrs": []any{}})
	Register("bgp", checkBGP, Skeleton{"peers": []any{}})
	Register("acl", checkACL, Skeleton{})
	Register("port_channel", checkPortChannel, Skeleton{})
	Register("image", checkImage, Skeleton{"version": ""})
	Register("vlan", checkVLAN, Skeleton{"ids": []any{}})
}

// checkOSPF: every desired neighbor must be present with a FULL adjacency
// (or the desired state when given as a map).
func checkOSPF(feature string, desired, actual any) []Check {
	return neighborChecks(feature, "nbrs", "FULL", desired, actual)
}

// checkBGP: every desired peer must be present and Established.
func checkBGP(feature string, desired, actual any) []Check {
	return neighborChecks(feature, "peers", "Established", desired, actual)
}

func neighborChecks(feature, key, wantState string, desired, actual any) []Check {
	actualNbrs := toMap(toMap(actual)[key])

	var checks []Check
	addCheck := func(nbr, state string) {
		path := fmt.Sprintf("%s.%s.%s", feature, key, nbr)
		got, present := actualNbrs[nbr]
		c := Check{Feature: feature, Path: path, Desired: state, Actual: got}
		switch {
		case !present:
			c.Reason = fmt.Sprintf("%s %s not present", strings.TrimSuffix(key, "s"), nbr)
		case !strings.EqualFold(toString(got), state):
			c.Reason = fmt.Sprintf("state %v, expected %s", got, state)
		default:
			c.Passed = true
		}
		checks = append(checks, c)
	}

	desiredTree := toMap(desired)
	switch want := desiredTree[key].(type) {
	case []any:
		for _, nbr := range want {
			addCheck(toString(nbr), wantState)
		}
	case map[string]any:
		for _, nbr := range sortedKeys(want) {
			addCheck(nbr, toString(want[nbr]))
		}
	default:
		checks = append(checks, Check{
			Feature: feature,
			Path:    feature + "." + key,
			Desired: desiredTree[key],
			Reason:  fmt.Sprintf("desired %s must be a list or mapping", key),
		})
	}
	return checks
}

// checkACL: each desired entry must exist in the named ACL at the same
// position; order is part of the contract.
func checkACL(feature string, desired, actual any) []Check {
	actualACLs := toMap(actual)

	var checks []Check
	desiredTree := toMap(desired)
	for _, name := range sortedKeys(desiredTree) {
		wantACEs := toList(desiredTree[name])
		gotACEs := toList(actualACLs[name])

		if _, present := actualACLs[name]; !present {
			checks = append(checks, Check{
				Feature: feature,
				Path:    fmt.Sprintf("%s.%s", feature, name),
				Desired: wantACEs,
				Reason:  fmt.Sprintf("acl %s not configured", name),
			})
			continue
		}

		for i, ace := range wantACEs {
			path := fmt.Sprintf("%s.%s[%d]", feature, name, i)
			c := Check{Feature: feature, Path: path, Desired: ace}
			switch {
			case i >= len(gotACEs):
				c.Reason = fmt.Sprintf("entry missing at position %d", i)
			case toString(gotACEs[i]) != toString(ace):
				c.Actual = gotACEs[i]
				c.Reason = fmt.Sprintf("entry at position %d is %v", i, gotACEs[i])
			default:
				c.Actual = gotACEs[i]
				c.Passed = true
			}
			checks = append(checks, c)
		}
	}
	return checks
}

// checkPortChannel: the member set must match exactly; missing and
// unexpected members both fail.
func checkPortChannel(feature string, desired, actual any) []Check {
	actualPCs := toMap(actual)

	var checks []Check
	desiredTree := toMap(desired)
	for _, name := range sortedKeys(desiredTree) {
		path := fmt.Sprintf("%s.%s.members", feature, name)
		want := stringSet(toList(toMap(desiredTree[name])["members"]))
		got := stringSet(toList(toMap(actualPCs[name])["members"]))

		if _, present := actualPCs[name]; !present {
			checks = append(checks, Check{
				Feature: feature,
				Path:    fmt.Sprintf("%s.%s", feature, name),
				Desired: desiredTree[name],
				Reason:  fmt.Sprintf("port-channel %s not configured", name),
			})
			continue
		}

		c := Check{Feature: feature, Path: path, Desired: setList(want), Actual: setList(got)}
		var missing, extra []string
		for m := range want {
			if _, ok := got[m]; !ok {
				missing = append(missing, m)
			}
		}
		for m := range got {
			if _, ok := want[m]; !ok {
				extra = append(extra, m)
			}
		}
		sort.Strings(missing)
		sort.Strings(extra)

		switch {
		case len(missing) > 0 && len(extra) > 0:
			c.Reason = fmt.Sprintf("missing members %v, unexpected members %v", missing, extra)
		case len(missing) > 0:
			c.Reason = fmt.Sprintf("missing members %v", missing)
		case len(extra) > 0:
			c.Reason = fmt.Sprintf("unexpected members %v", extra)
		default:
			c.Passed = true
		}
		checks = append(checks, c)
	}
	return checks
}

// checkImage: exact version equality.
func checkImage(feature string, desired, actual any) []Check {
	want := toString(toMap(desired)["version"])
	got := toString(toMap(actual)["version"])

	c := Check{Feature: feature, Path: feature + ".version", Desired: want, Actual: got}
	if want == got {
		c.Passed = true
	} else {
		c.Reason = fmt.Sprintf("running %s, expected %s", got, want)
	}
	return []Check{c}
}

// checkVLAN: every desired VLAN id must exist.
func checkVLAN(feature string, desired, actual any) []Check {
	got := stringSet(toList(toMap(actual)["ids"]))

	var checks []Check
	for _, id := range toList(toMap(desired)["ids"]) {
		path := fmt.Sprintf("%s.ids.%v", feature, id)
		c := Check{Feature: feature, Path: path, Desired: id}
		if _, ok := got[toString(id)]; ok {
			c.Passed = true
		} else {
			c.Reason = fmt.Sprintf("vlan %v not present", id)
		}
		checks = append(checks, c)
	}
	return checks
}

func toMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func toList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringSet(list []any) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[toString(v)] = struct{}{}
	}
	return set
}

func setList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
