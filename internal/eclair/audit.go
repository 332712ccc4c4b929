// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package eclair

import "time"

// Audit is the reply of the audit method. Amounts are msat.
type Audit struct {
	Sent     []Sent     `json:"sent"`
	Received []Received `json:"received"`
	Relayed  []Relayed  `json:"relayed"`
}

type SentPart struct {
	ID          string    `json:"id"`
	Amount      uint64    `json:"amount"`
	FeesPaid    uint64    `json:"feesPaid"`
	ToChannelID string    `json:"toChannelId"`
	Timestamp   Timestamp `json:"timestamp"`
}

type Sent struct {
	Type            string     `json:"type"`
	ID              string     `json:"id"`
	PaymentHash     string     `json:"paymentHash"`
	PaymentPreimage string     `json:"paymentPreimage"`
	RecipientAmount uint64     `json:"recipientAmount"`
	RecipientNodeID string     `json:"recipientNodeId"`
	Parts           []SentPart `json:"parts"`
}

type ReceivedPart struct {
	Amount        uint64    `json:"amount"`
	FromChannelID string    `json:"fromChannelId"`
	Timestamp     Timestamp `json:"timestamp"`
}

type Received struct {
	Type        string         `json:"type"`
	PaymentHash string         `json:"paymentHash"`
	Parts       []ReceivedPart `json:"parts"`
}

// Relayed is a payment forwarded from one channel to another.
type Relayed struct {
	Type          string    `json:"type"`
	AmountIn      uint64    `json:"amountIn"`
	AmountOut     uint64    `json:"amountOut"`
	PaymentHash   string    `json:"paymentHash"`
	FromChannelID string    `json:"fromChannelId"`
	ToChannelID   string    `json:"toChannelId"`
	Timestamp     Timestamp `json:"timestamp"`
	SettledAt     Timestamp `json:"settledAt"`
}

// Fee is what the node earned for the relay.
func (r Relayed) Fee() uint64 {
	if r.AmountOut > r.AmountIn {
		return 0
	}
	return r.AmountIn - r.AmountOut
}

// At is when the relay completed. Newer nodes report settledAt separately.
func (r Relayed) At() time.Time {
	if !r.SettledAt.IsZero() {
		return r.SettledAt.Time()
	}
	return r.Timestamp.Time()
}
