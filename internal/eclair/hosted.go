// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

// PluginChannels is the reply of hc-all and fc-all, keyed by channel id.
// Hosted and fiat channels share the layout; fiat ones carry a rate.
type PluginChannels struct {
	Channels map[string]PluginChannel `json:"channels"`
}

type PluginChannel struct {
	State         ChannelState `json:"state"`
	Data          PluginData   `json:"data"`
	NextLocalSpec CommitSpec   `json:"nextLocalSpec"`
}

// Local is our balance in msat after pending updates.
func (c PluginChannel) Local() uint64 { return c.NextLocalSpec.ToLocal }

func (c PluginChannel) Remote() uint64 { return c.NextLocalSpec.ToRemote }

type PluginCommitments struct {
	LocalNodeID  string     `json:"localNodeId"`
	RemoteNodeID string     `json:"remoteNodeId"`
	ChannelID    string     `json:"channelId"`
	LocalSpec    CommitSpec `json:"localSpec"`
}

type LocalError struct {
	ChannelID string `json:"channelId"`
	Data      string `json:"data"`
}

type ChanError struct {
	Error       LocalError `json:"error"`
	Stamp       string     `json:"stamp"`
	Description string     `json:"description"`
}

type ResizeProposal struct {
	NewCapacity uint64 `json:"newCapacity"`
	ClientSig   string `json:"clientSig"`
}

// OverrideProposal resets the channel state. Rate is only sent for fiat
// channels.
type OverrideProposal struct {
	BlockDay         uint32 `json:"blockDay"`
	LocalBalanceMsat uint64 `json:"localBalanceMsat"`
	LocalUpdates     uint32 `json:"localUpdates"`
	RemoteUpdates    uint32 `json:"remoteUpdates"`
	Rate             uint64 `json:"rate"`
	LocalSigOfRemote string `json:"localSigOfRemoteLCSS"`
}

type MarginProposal struct {
	NewCapacity uint64 `json:"newCapacity"`
	NewRate     uint64 `json:"newRate"`
	ClientSig   string `json:"clientSig"`
}

type PluginData struct {
	Commitments      PluginCommitments `json:"commitments"`
	ChannelUpdate    ChannelUpdate     `json:"channelUpdate"`
	LocalErrors      []ChanError       `json:"localErrors"`
	RemoteErrors     []ChanError       `json:"remoteErrors"`
	ResizeProposal   *ResizeProposal   `json:"resizeProposal"`
	OverrideProposal *OverrideProposal `json:"overrideProposal"`
	MarginProposal   *MarginProposal   `json:"marginProposal"`
	LastOracleState  *uint64           `json:"lastOracleState"`
}
