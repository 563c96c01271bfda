package compliance

import (
	"errors"
	"reflect"
	"testing"

	"github.com/netops-tools/prepost/pkg/facts"
	"github.com/netops-tools/prepost/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationSpec(host string, v map[string]any) *spec.Effective {
	return &spec.Effective{Host: host, Validation: v}
}

func TestEvaluateOSPFPass(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"ospf": map[string]any{"nbrs": []any{"192.168.0.1", "192.168.0.2"}},
	})
	actual := facts.HostFacts{
		"ospf": map[string]any{
			"nbrs": map[string]any{"192.168.0.1": "FULL", "192.168.0.2": "FULL"},
		},
	}

	report, err := Evaluate(eff, actual)
	require.NoError(t, err)
	assert.True(t, report.Complies)
	assert.Len(t, report.Checks, 2)
}

func TestEvaluateOSPFNeighborDown(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"ospf": map[string]any{"nbrs": []any{"192.168.0.1", "192.168.0.2"}},
	})
	actual := facts.HostFacts{
		"ospf": map[string]any{
			"nbrs": map[string]any{"192.168.0.1": "FULL", "192.168.0.2": "EXSTART"},
		},
	}

	report, err := Evaluate(eff, actual)
	require.NoError(t, err)
	assert.False(t, report.Complies)

	var failed []Check
	for _, c := range report.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "ospf.nbrs.192.168.0.2", failed[0].Path)
	assert.Contains(t, failed[0].Reason, "EXSTART")
}

func TestEvaluateFeatureAbsentFromFacts(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"ospf": map[string]any{"nbrs": []any{"192.168.0.1"}},
	})

	report, err := Evaluate(eff, facts.HostFacts{})
	require.NoError(t, err)
	assert.False(t, report.Complies)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "feature not present/enabled", report.Checks[0].Reason)
}

func TestEvaluateUnknownFeature(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"no_such_feature": map[string]any{"x": 1},
	})

	_, err := Evaluate(eff, facts.HostFacts{"no_such_feature": map[string]any{}})
	var invalid *InvalidSpecPathError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "no_such_feature", invalid.Feature)
}

func TestEvaluateACLOrder(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"acl": map[string]any{
			"INBOUND": []any{"permit tcp any any eq 443", "deny ip any any"},
		},
	})
	actual := facts.HostFacts{
		"acl": map[string]any{
			"INBOUND": []any{"deny ip any any", "permit tcp any any eq 443"},
		},
	}

	report, err := Evaluate(eff, actual)
	require.NoError(t, err)
	// Both entries exist but in the wrong order: both positional checks fail.
	assert.False(t, report.Complies)
	for _, c := range report.Checks {
		assert.False(t, c.Passed, "check %s should fail on order", c.Path)
	}
}

func TestEvaluatePortChannelMembers(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"port_channel": map[string]any{
			"Po1": map[string]any{"members": []any{"Eth1/1", "Eth1/2"}},
		},
	})

	actual := facts.HostFacts{
		"port_channel": map[string]any{
			"Po1": map[string]any{"members": []any{"Eth1/1", "Eth1/3"}},
		},
	}

	report, err := Evaluate(eff, actual)
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)
	assert.False(t, report.Checks[0].Passed)
	assert.Contains(t, report.Checks[0].Reason, "Eth1/2")
	assert.Contains(t, report.Checks[0].Reason, "Eth1/3")
}

func TestEvaluateDeterministicOrder(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"vlan":  map[string]any{"ids": []any{10, 20}},
		"image": map[string]any{"version": "9.3.9"},
		"ospf":  map[string]any{"nbrs": []any{"10.0.0.1"}},
	})
	actual := facts.HostFacts{
		"vlan":  map[string]any{"ids": []any{10, 20}},
		"image": map[string]any{"version": "9.3.9"},
		"ospf":  map[string]any{"nbrs": map[string]any{"10.0.0.1": "FULL"}},
	}

	first, err := Evaluate(eff, actual)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Evaluate(eff, actual)
		require.NoError(t, err)
		require.True(t, reflect.DeepEqual(first, again), "evaluation order or outcomes changed between runs")
	}

	// Sorted feature order: image before ospf before vlan.
	assert.Equal(t, "image", first.Checks[0].Feature)
	assert.Equal(t, "ospf", first.Checks[1].Feature)
	assert.Equal(t, "vlan", first.Checks[2].Feature)
}

func TestAggregateLaw(t *testing.T) {
	pass := HostReport{Host: "R1", Complies: true, Checks: []Check{{Passed: true}}}
	fail := HostReport{Host: "R2", Complies: false, Checks: []Check{{Passed: false}}}

	assert.True(t, Aggregate([]HostReport{pass}).Complies)
	assert.False(t, Aggregate([]HostReport{pass, fail}).Complies)

	// complies == true iff zero failing checks anywhere.
	agg := Aggregate([]HostReport{pass, fail})
	hasFailure := false
	for _, h := range agg.Hosts {
		for _, c := range h.Checks {
			if !c.Passed {
				hasFailure = true
			}
		}
	}
	assert.Equal(t, !hasFailure, agg.Complies)
}

func TestAggregateHostOrder(t *testing.T) {
	agg := Aggregate([]HostReport{{Host: "R2"}, {Host: "R1"}})
	assert.Equal(t, "R1", agg.Hosts[0].Host)
	assert.Equal(t, "R2", agg.Hosts[1].Host)
}

func TestEvaluateImageMismatch(t *testing.T) {
	eff := validationSpec("R1", map[string]any{
		"image": map[string]any{"version": "9.3.9"},
	})
	actual := facts.HostFacts{
		"image": map[string]any{"version": "9.3.8"},
	}

	report, err := Evaluate(eff, actual)
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)
	assert.False(t, report.Checks[0].Passed)
	assert.Contains(t, report.Checks[0].Reason, "9.3.8")
}
