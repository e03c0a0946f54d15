// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spindle

import (
	"golang.org/x/mod/semver"

	"github.com/kolkov/spindle/internal/spindle/api"
)

// Version information for spindle.
const (
	// Version is the current version of the spindle runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about spindle.
//
// It is a snapshot: Initialized and EmulatedCond reflect the default runtime
// at the time GetInfo was called.
type Info struct {
	// Version is the runtime version string.
	Version string

	// Backend names the native backend ("posix" or "windows").
	Backend string

	// NativeCond reports whether the backend has native condition
	// variables.
	NativeCond bool

	// EmulatedCond reports whether new condition variables use the
	// event-based emulation.
	EmulatedCond bool

	// CPUCores is the number of logical processors available.
	CPUCores int

	// Resolution is the timer tick length in seconds.
	Resolution float64

	// Initialized reports whether the runtime is initialized.
	Initialized bool
}

// GetInfo returns information about the spindle runtime.
//
// It does not initialize the runtime. Backend, core count and resolution
// come from the native backend, which exists as soon as the default runtime
// is first touched; the configuration is read from SPINDLE_* environment
// variables at that point.
//
// Returns:
//   - Info: version, backend capabilities and lifecycle state
//
// Example:
//
//	info := spindle.GetInfo()
//	fmt.Printf("spindle %s (%s, %d cores)\n", info.Version, info.Backend, info.CPUCores)
func GetInfo() Info {
	return infoFrom(defaultRuntime().Info())
}

func infoFrom(ri api.Info) Info {
	return Info{
		Version:      Version,
		Backend:      ri.Backend,
		NativeCond:   ri.NativeCond,
		EmulatedCond: ri.EmulateCond,
		CPUCores:     ri.CPUCores,
		Resolution:   ri.Resolution,
		Initialized:  ri.Initialized,
	}
}

// AtLeast reports whether this runtime's version is at least v.
//
// Versions are compared by semantic-version precedence, so pre-release
// versions sort before their release and build metadata is ignored.
//
// Parameters:
//   - v: a semantic version such as "0.1.0" or "v0.1"; the leading "v" is
//     optional and missing minor or patch components count as zero
//
// Returns:
//   - bool: true if Version >= v, false if it is older or v is not a valid
//     semantic version
//
// Example:
//
//	if !spindle.AtLeast("0.1.0") {
//		log.Fatal("spindle 0.1.0 or newer required")
//	}
func AtLeast(v string) bool {
	if len(v) == 0 || v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare("v"+Version, v) >= 0
}
