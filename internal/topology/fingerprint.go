// Package topology reduces the active output set to a stable, comparable
// fingerprint used as the key for remembered window geometry.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/winkeep/internal/x11"
)

// Fingerprint is a canonical, order-independent encoding of the enabled
// output set. Two queries returning the same enabled outputs (name,
// geometry, rotation) produce equal fingerprints; any added, removed,
// moved, resized or rotated output produces a different one.
type Fingerprint string

// None is the zero fingerprint, used before the first topology query.
const None Fingerprint = ""

// nameEscaper keeps the encoding injective: a separator inside an output
// name must not read as record structure.
var nameEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, ",", `\,`)

// Snapshot computes the fingerprint of the given output set. It is a pure
// function: disabled outputs are ignored, enumeration order is removed by
// sorting on output name.
func Snapshot(outputs []x11.Output) Fingerprint {
	parts := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if !out.Enabled {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%dx%d+%d+%d/%d",
			nameEscaper.Replace(out.Name), out.Width, out.Height, out.X, out.Y, out.Rotation))
	}
	sort.Strings(parts)
	return Fingerprint(strings.Join(parts, ","))
}

// EnabledCount returns how many outputs in the set are enabled.
func EnabledCount(outputs []x11.Output) int {
	n := 0
	for _, out := range outputs {
		if out.Enabled {
			n++
		}
	}
	return n
}
