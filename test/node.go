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

package test

import (
	"fmt"
	"net"
	"path"
)

// FreeTCPPort asks the kernel for a free open port that is ready to use.
func FreeTCPPort() (port int) {
	if a, err := net.ResolveTCPAddr("tcp", "localhost:0"); err == nil {
		var l *net.TCPListener
		if l, err = net.ListenTCP("tcp", a); err == nil {
			defer l.Close()
			return l.Addr().(*net.TCPAddr).Port
		}
	}
	panic("unable to find a free TCP port")
}

// GetIntegrationTestConfig returns a config map for a node that stores its data in the given directory
// and listens on a free port.
func GetIntegrationTestConfig(testDirectory string) map[string]string {
	return map[string]string{
		"configfile":   path.Join(testDirectory, "nuts-anchor.yaml"), // does not exist, but that's okay: default config
		"datadir":      testDirectory,
		"http.address": fmt.Sprintf("localhost:%d", FreeTCPPort()),
	}
}
