// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ir defines the language-agnostic data model shared by every layer
// of the Code Foundation Core: spans, nodes, edges, IR documents, the
// constant-propagation lattice, taint atoms, change sets, and cache entries.
package ir

import "fmt"

// Span is a 1-based, half-open-at-column-end source range.
// Invariant: (StartLine, StartCol) <= (EndLine, EndCol).
type Span struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Valid reports whether the span satisfies the ordering invariant.
func (s Span) Valid() bool {
	if s.StartLine != s.EndLine {
		return s.StartLine < s.EndLine
	}
	return s.StartCol <= s.EndCol
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}
