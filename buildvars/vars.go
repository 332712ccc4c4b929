// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds values stamped into the binary at link time.
package buildvars

// Version is set with `-ldflags -X github.com/tortoise-ln/tortoise/buildvars.Version=...`.
// Local builds leave it empty.
var Version string

// Commit is the VCS revision the binary was built from, if known.
var Commit string

// VersionOrDefault returns Version, or def for unstamped builds.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}

// Describe renders the version together with the commit when one was stamped.
func Describe() string {
	v := VersionOrDefault("dev")
	if Commit == "" {
		return v
	}
	c := Commit
	if len(c) > 12 {
		c = c[:12]
	}
	return v + " (" + c + ")"
}
