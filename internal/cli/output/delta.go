package output

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/marmos91/smbmanager/pkg/smbconf"
)

// PrintDelta writes the changes of an apply, one per line, deletions first
// in the order they run: "- key" for a delparm, "+ key = value" for a
// setparm. Keys are shown in Samba's spaced form.
func PrintDelta(w io.Writer, toSet map[string]string, toDelete []string, color bool) {
	if len(toSet) == 0 && len(toDelete) == 0 {
		_, _ = fmt.Fprintln(w, "No changes.")
		return
	}
	for _, key := range toDelete {
		_, _ = fmt.Fprintln(w, paint(color, colorRed, "- "+smbconf.DisplayKey(key)))
	}
	for _, key := range slices.Sorted(maps.Keys(toSet)) {
		_, _ = fmt.Fprintln(w, paint(color, colorGreen, "+ "+smbconf.FormatLine(key, toSet[key])))
	}
}

// ParamTable renders section parameters as KEY / VALUE rows in Samba's
// spaced key form, sorted by key.
type ParamTable map[string]string

// Headers implements TableRenderer.
func (p ParamTable) Headers() []string {
	return []string{"PARAMETER", "VALUE"}
}

// Rows implements TableRenderer.
func (p ParamTable) Rows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, key := range slices.Sorted(maps.Keys(p)) {
		rows = append(rows, []string{smbconf.DisplayKey(key), p[key]})
	}
	return rows
}
