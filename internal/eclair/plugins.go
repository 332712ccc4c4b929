// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

import (
	"context"
	"errors"
	"strings"
)

// Plugin is an optional Eclair extension tortoise knows how to display.
type Plugin int

const (
	// PluginHostedChannels is https://github.com/engenegr/plugin-hosted-channels.
	PluginHostedChannels Plugin = iota + 1
	// PluginFiatChannels is https://github.com/standardsats/plugin-fiat-channels.
	PluginFiatChannels
)

// KnownPlugins lists every plugin that is checked, in display order.
func KnownPlugins() []Plugin {
	return []Plugin{PluginHostedChannels, PluginFiatChannels}
}

func (p Plugin) String() string {
	switch p {
	case PluginHostedChannels:
		return "hosted channels"
	case PluginFiatChannels:
		return "fiat channels"
	default:
		return "unknown plugin"
	}
}

// method is the listing endpoint that doubles as the availability check.
func (p Plugin) method() string {
	switch p {
	case PluginHostedChannels:
		return "hc-all"
	case PluginFiatChannels:
		return "fc-all"
	default:
		return ""
	}
}

// PluginSet is the set of plugins a node supports.
type PluginSet map[Plugin]struct{}

func (s PluginSet) Has(p Plugin) bool {
	_, ok := s[p]
	return ok
}

func (s PluginSet) String() string {
	if len(s) == 0 {
		return "none"
	}
	var names []string
	for _, p := range KnownPlugins() {
		if s.Has(p) {
			names = append(names, p.String())
		}
	}
	return strings.Join(names, ", ")
}

// SupportsPlugin calls the plugin endpoint. A 404 means the plugin is not
// installed. Any other failure is returned as an error.
func (c *Client) SupportsPlugin(ctx context.Context, p Plugin) (bool, error) {
	method := p.method()
	if method == "" {
		return false, nil
	}
	_, err := c.post(ctx, method, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// SupportedPlugins checks every known plugin.
func (c *Client) SupportedPlugins(ctx context.Context) (PluginSet, error) {
	set := PluginSet{}
	for _, p := range KnownPlugins() {
		ok, err := c.SupportsPlugin(ctx, p)
		if err != nil {
			return nil, err
		}
		if ok {
			set[p] = struct{}{}
		}
	}
	return set, nil
}
