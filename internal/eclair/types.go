// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is how Eclair encodes instants. Current releases send
// {"iso": ..., "unix": seconds}; older ones send bare milliseconds.
type Timestamp struct {
	ISO  string `json:"iso"`
	Unix int64  `json:"unix"`
	// Millis keeps the sub-second part of bare millisecond values.
	Millis int64 `json:"-"`
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '{' {
		type plain Timestamp
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*t = Timestamp(p)
		t.Millis = t.Unix * 1000
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	at := time.UnixMilli(ms).UTC()
	t.Unix = at.Unix()
	t.Millis = ms
	t.ISO = at.Format(time.RFC3339Nano)
	return nil
}

// Time returns the instant in UTC.
func (t Timestamp) Time() time.Time {
	if t.Millis != 0 {
		return time.UnixMilli(t.Millis).UTC()
	}
	return time.Unix(t.Unix, 0).UTC()
}

func (t Timestamp) IsZero() bool { return t.Unix == 0 && t.ISO == "" }

// FeatureStatus is whether a feature bit is optional or mandatory.
type FeatureStatus string

const (
	FeatureOptional  FeatureStatus = "optional"
	FeatureMandatory FeatureStatus = "mandatory"
)

type Features struct {
	Activated map[string]FeatureStatus `json:"activated"`
	Unknown   []int                    `json:"unknown"`
}

// Network is the chain the node runs on.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

// String capitalises the network name for display.
func (n Network) String() string {
	if n == "" {
		return "Unknown"
	}
	s := string(n)
	return strings.ToUpper(s[:1]) + s[1:]
}

type NodeInfo struct {
	Version         string   `json:"version"`
	NodeID          string   `json:"nodeId"`
	Alias           string   `json:"alias"`
	Color           string   `json:"color"`
	Features        Features `json:"features"`
	ChainHash       string   `json:"chainHash"`
	Network         Network  `json:"network"`
	BlockHeight     uint64   `json:"blockHeight"`
	PublicAddresses []string `json:"publicAddresses"`
	InstanceID      string   `json:"instanceId"`
}

// NetworkNode is a node announcement as returned by the nodes method.
type NetworkNode struct {
	Signature string    `json:"signature"`
	Features  Features  `json:"features"`
	Timestamp Timestamp `json:"timestamp"`
	NodeID    string    `json:"nodeId"`
	RGBColor  string    `json:"rgbColor"`
	Alias     string    `json:"alias"`
	Addresses []string  `json:"addresses"`
}

// Balance is the on-chain wallet balance in satoshi.
type Balance struct {
	Confirmed   uint64 `json:"confirmed"`
	Unconfirmed uint64 `json:"unconfirmed"`
}

func (b Balance) Total() uint64 { return b.Confirmed + b.Unconfirmed }

// ShortNodeID abbreviates a 66 hex char node id for display.
func ShortNodeID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "…" + id[len(id)-8:]
}
