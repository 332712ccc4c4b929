// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package monitor

import (
	"fmt"
	"time"

	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/stats"
)

// Snapshot is everything known about the node after one refresh. A
// published snapshot is never modified.
type Snapshot struct {
	TakenAt  time.Time
	Node     eclair.NodeInfo
	Channels []eclair.Channel
	Audit    eclair.Audit
	// Aliases maps node ids to announced aliases.
	Aliases map[string]string
	Plugins eclair.PluginSet
	Hosted  eclair.PluginChannels
	Fiat    eclair.PluginChannels
	Onchain eclair.Balance

	Liquidity      stats.Liquidity
	Relays         stats.RelayTotals
	RelayedPercent float64
	ReturnRate     float64
	ChannelStats   []stats.ChannelStats
	HostedStats    []stats.ChannelStats
	FiatStats      []stats.FiatStats
	Peers          []stats.Peer

	Errors []ErrorEntry
}

// Ready reports whether at least one refresh succeeded.
func (s Snapshot) Ready() bool { return !s.TakenAt.IsZero() }

// ErrorEntry is a failure shown to the user until dismissed. Source names
// the optional part that failed; it is empty when the whole refresh failed.
type ErrorEntry struct {
	At     time.Time
	Source string
	Err    error
}

func (e ErrorEntry) String() string {
	if e.Source == "" {
		return fmt.Sprintf("App worker failed at %d with: %v", e.At.Unix(), e.Err)
	}
	return fmt.Sprintf("Fetching %s failed at %d with: %v", e.Source, e.At.Unix(), e.Err)
}
