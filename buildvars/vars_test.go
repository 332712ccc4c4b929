// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package buildvars

import "testing"

func TestVersionOrDefault(t *testing.T) {
	prev := Version
	defer func() { Version = prev }()

	Version = ""
	if got := VersionOrDefault("dev"); got != "dev" {
		t.Fatalf("expected dev for empty version, got %q", got)
	}
	Version = "1.4.0"
	if got := VersionOrDefault("dev"); got != "1.4.0" {
		t.Fatalf("expected stamped version, got %q", got)
	}
}

func TestDescribe_TruncatesCommit(t *testing.T) {
	pv, pc := Version, Commit
	defer func() { Version, Commit = pv, pc }()

	Version = "0.3.1"
	Commit = "0123456789abcdef0123"
	if got := Describe(); got != "0.3.1 (0123456789ab)" {
		t.Fatalf("unexpected description %q", got)
	}
	Commit = ""
	if got := Describe(); got != "0.3.1" {
		t.Fatalf("expected bare version without commit, got %q", got)
	}
}
