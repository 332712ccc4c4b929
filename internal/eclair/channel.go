// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

import (
	"bytes"
	"encoding/json"
)

// ChannelState is the state name Eclair reports for a channel.
type ChannelState string

const (
	StateNormal                  ChannelState = "NORMAL"
	StateOpening                 ChannelState = "OPENING"
	StateClosing                 ChannelState = "CLOSING"
	StateClosed                  ChannelState = "CLOSED"
	StateOffline                 ChannelState = "OFFLINE"
	StateSyncing                 ChannelState = "SYNCING"
	StateShutdown                ChannelState = "SHUTDOWN"
	StateNegotiating             ChannelState = "NEGOTIATING"
	StateWaitForFundingConfirmed ChannelState = "WAIT_FOR_FUNDING_CONFIRMED"
	StateWaitForFundingLocked    ChannelState = "WAIT_FOR_FUNDING_LOCKED"
	StateWaitForChannelReady     ChannelState = "WAIT_FOR_CHANNEL_READY"
)

func (s ChannelState) IsNormal() bool { return s == StateNormal }

// IsPending is true for channels that are opening, closing or catching up.
func (s ChannelState) IsPending() bool {
	switch s {
	case StateOpening, StateClosing, StateSyncing, StateShutdown, StateNegotiating,
		StateWaitForFundingConfirmed, StateWaitForFundingLocked, StateWaitForChannelReady:
		return true
	}
	return false
}

func (s ChannelState) IsSleeping() bool { return s == StateOffline }

type HTLCDirection string

const (
	HTLCIn  HTLCDirection = "IN"
	HTLCOut HTLCDirection = "OUT"
)

type HTLCAdd struct {
	ChannelID   string `json:"channelId"`
	ID          uint64 `json:"id"`
	AmountMsat  uint64 `json:"amountMsat"`
	PaymentHash string `json:"paymentHash"`
	CltvExpiry  uint64 `json:"cltvExpiry"`
}

type HTLC struct {
	Direction HTLCDirection `json:"direction"`
	Add       HTLCAdd       `json:"add"`
}

// CommitSpec holds the balances of one commitment in msat.
type CommitSpec struct {
	HTLCs           []HTLC `json:"htlcs"`
	CommitTxFeerate uint64 `json:"commitTxFeerate"`
	ToLocal         uint64 `json:"toLocal"`
	ToRemote        uint64 `json:"toRemote"`
}

type LocalCommit struct {
	Index uint64     `json:"index"`
	Spec  CommitSpec `json:"spec"`
}

// Commitments is the part of the channel data tortoise reads. Eclair 0.8
// moved the local commitment under "active"; both layouts are accepted and
// LocalCommit is filled either way.
type Commitments struct {
	ChannelID   string      `json:"channelId"`
	LocalCommit LocalCommit `json:"localCommit"`
}

func (c *Commitments) UnmarshalJSON(b []byte) error {
	var raw struct {
		ChannelID   string       `json:"channelId"`
		LocalCommit *LocalCommit `json:"localCommit"`
		Params      struct {
			ChannelID string `json:"channelId"`
		} `json:"params"`
		Active []struct {
			LocalCommit LocalCommit `json:"localCommit"`
		} `json:"active"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.ChannelID = raw.ChannelID
	if c.ChannelID == "" {
		c.ChannelID = raw.Params.ChannelID
	}
	switch {
	case raw.LocalCommit != nil:
		c.LocalCommit = *raw.LocalCommit
	case len(raw.Active) > 0:
		c.LocalCommit = raw.Active[0].LocalCommit
	}
	return nil
}

// ChannelFlags is an object in current releases and a bit field in old ones.
type ChannelFlags struct {
	IsEnabled       bool `json:"isEnabled"`
	IsNode1         bool `json:"isNode1"`
	AnnounceChannel bool `json:"announceChannel"`
}

func (f *ChannelFlags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '{' {
		var bits uint8
		if err := json.Unmarshal(b, &bits); err != nil {
			return err
		}
		f.AnnounceChannel = bits&1 != 0
		return nil
	}
	type plain ChannelFlags
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = ChannelFlags(p)
	return nil
}

type ChannelUpdate struct {
	Signature                 string       `json:"signature"`
	ChainHash                 string       `json:"chainHash"`
	ShortChannelID            string       `json:"shortChannelId"`
	Timestamp                 Timestamp    `json:"timestamp"`
	ChannelFlags              ChannelFlags `json:"channelFlags"`
	CltvExpiryDelta           uint32       `json:"cltvExpiryDelta"`
	HTLCMinimumMsat           uint64       `json:"htlcMinimumMsat"`
	HTLCMaximumMsat           uint64       `json:"htlcMaximumMsat"`
	FeeBaseMsat               uint64       `json:"feeBaseMsat"`
	FeeProportionalMillionths uint64       `json:"feeProportionalMillionths"`
}

type ChannelData struct {
	Type           string         `json:"type"`
	Commitments    Commitments    `json:"commitments"`
	ShortChannelID string         `json:"shortChannelId"`
	Buried         bool           `json:"buried"`
	ChannelUpdate  *ChannelUpdate `json:"channelUpdate"`
}

// Channel is one entry of the channels reply.
type Channel struct {
	NodeID    string       `json:"nodeId"`
	ChannelID string       `json:"channelId"`
	State     ChannelState `json:"state"`
	Data      *ChannelData `json:"data"`
}

func (c Channel) spec() CommitSpec {
	if c.Data == nil {
		return CommitSpec{}
	}
	return c.Data.Commitments.LocalCommit.Spec
}

// Local is our side of the channel in msat.
func (c Channel) Local() uint64 { return c.spec().ToLocal }

// Remote is the peer's side of the channel in msat.
func (c Channel) Remote() uint64 { return c.spec().ToRemote }

// Volume is the channel capacity in msat, zero without channel data.
func (c Channel) Volume() uint64 {
	s := c.spec()
	return s.ToLocal + s.ToRemote
}

// ShortChannelID returns the short id once the funding is confirmed.
func (c Channel) ShortChannelID() string {
	if c.Data == nil {
		return ""
	}
	if c.Data.ShortChannelID != "" {
		return c.Data.ShortChannelID
	}
	if c.Data.ChannelUpdate != nil {
		return c.Data.ChannelUpdate.ShortChannelID
	}
	return ""
}
