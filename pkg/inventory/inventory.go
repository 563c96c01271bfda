// Package inventory loads the static host/group inventory and filters it
// down to the devices a run targets. It is the boundary the merger's
// host-to-groups mapping comes from; device connectivity lives elsewhere.
package inventory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Host struct {
	Name     string   `yaml:"-"`
	Hostname string   `yaml:"hostname"`
	Groups   []string `yaml:"groups,omitempty"`
	Location string   `yaml:"location,omitempty"`
	Version  string   `yaml:"version,omitempty"`
	Platform string   `yaml:"platform,omitempty"`
}

type Group struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description,omitempty"`
	Platform    string `yaml:"platform,omitempty"`
}

type Inventory struct {
	Hosts  []*Host
	Groups map[string]*Group
}

// Load reads hosts.yml and groups.yml. Host order is normalized to name
// order so downstream output is stable.
func Load(hostsPath, groupsPath string) (*Inventory, error) {
	hostsData, err := os.ReadFile(hostsPath)
	if err != nil {
		return nil, fmt.Errorf("read hosts file: %w", err)
	}

	var rawHosts map[string]*Host
	if err := yaml.Unmarshal(hostsData, &rawHosts); err != nil {
		return nil, fmt.Errorf("parse hosts file: %w", err)
	}

	inv := &Inventory{Groups: make(map[string]*Group)}
	for name, h := range rawHosts {
		if h == nil {
			h = &Host{}
		}
		h.Name = name
		inv.Hosts = append(inv.Hosts, h)
	}
	sort.Slice(inv.Hosts, func(i, j int) bool { return inv.Hosts[i].Name < inv.Hosts[j].Name })

	groupsData, err := os.ReadFile(groupsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return inv, nil
		}
		return nil, fmt.Errorf("read groups file: %w", err)
	}

	var rawGroups map[string]*Group
	if err := yaml.Unmarshal(groupsData, &rawGroups); err != nil {
		return nil, fmt.Errorf("parse groups file: %w", err)
	}
	for name, g := range rawGroups {
		if g == nil {
			g = &Group{}
		}
		g.Name = name
		inv.Groups[name] = g
	}

	return inv, nil
}

// FilterOptions narrow an inventory. Empty fields match everything; values
// are comma-separated alternatives, names match as case-insensitive
// substrings (the usual way operators scope a change window).
type FilterOptions struct {
	Names     string
	Groups    string
	Locations string
	Versions  string
}

func (o FilterOptions) empty() bool {
	return o.Names == "" && o.Groups == "" && o.Locations == "" && o.Versions == ""
}

// Filter returns a new inventory containing only matching hosts.
func (inv *Inventory) Filter(opts FilterOptions) *Inventory {
	if opts.empty() {
		return inv
	}

	out := &Inventory{Groups: inv.Groups}
	for _, h := range inv.Hosts {
		if matchesAny(opts.Names, func(v string) bool {
			return strings.Contains(strings.ToLower(h.Name), v) ||
				strings.Contains(strings.ToLower(h.Hostname), v)
		}) &&
			matchesAny(opts.Groups, func(v string) bool { return containsFold(h.Groups, v) }) &&
			matchesAny(opts.Locations, func(v string) bool { return strings.EqualFold(h.Location, v) }) &&
			matchesAny(opts.Versions, func(v string) bool { return strings.EqualFold(h.Version, v) }) {
			out.Hosts = append(out.Hosts, h)
		}
	}
	return out
}

func matchesAny(raw string, match func(string) bool) bool {
	if raw == "" {
		return true
	}
	for _, v := range strings.Split(raw, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if match(v) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// Names returns the host names in order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Hosts))
	for _, h := range inv.Hosts {
		names = append(names, h.Name)
	}
	return names
}

// HostGroups returns the host-name to group-names mapping the spec merger
// consumes.
func (inv *Inventory) HostGroups() map[string][]string {
	m := make(map[string][]string, len(inv.Hosts))
	for _, h := range inv.Hosts {
		m[h.Name] = h.Groups
	}
	return m
}

// Get looks a host up by inventory name or hostname, case-insensitively.
func (inv *Inventory) Get(name string) *Host {
	for _, h := range inv.Hosts {
		if strings.EqualFold(h.Name, name) || strings.EqualFold(h.Hostname, name) {
			return h
		}
	}
	return nil
}
