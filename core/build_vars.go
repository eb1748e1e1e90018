/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package core

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// GitCommit, GitVersion and GitBranch are set at build time through -ldflags "-X".
var (
	GitCommit  string
	GitVersion string
	GitBranch  = "development"
)

// Version gives the current version according to the git tag or the branch if there's no tag.
func Version() string {
	if GitVersion != "" && GitVersion != "undefined" {
		return GitVersion
	}
	return GitBranch
}

// Commit returns GitCommit, or the VCS revision Go embedded in the binary when it wasn't set at build time.
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// OSArch returns the OS and Arch
func OSArch() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

// BuildInfo returns a human-readable summary of the build, printed by the version command.
func BuildInfo() string {
	return fmt.Sprintf("Git version: %s\nGit commit: %s\nOS/Arch: %s\nGo version: %s\n",
		Version(), Commit(), OSArch(), runtime.Version())
}
