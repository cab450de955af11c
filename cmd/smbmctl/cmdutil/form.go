package cmdutil

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbmanager/internal/cli/prompt"
	"github.com/marmos91/smbmanager/pkg/apiclient"
	"github.com/marmos91/smbmanager/pkg/reconcile"
	"github.com/marmos91/smbmanager/pkg/smbconf"
	"github.com/marmos91/smbmanager/pkg/smbconf/binding"
)

// FormEdits are flag-driven changes to a section's form.
type FormEdits struct {
	Set          []string
	Unset        []string
	AdvancedFile string
	ValidUsers   []string
	ValidGroups  []string
}

var formFlags = []string{"set", "unset", "advanced-file", "valid-user", "valid-group"}

// AddFlags registers the edit flags on cmd. withIdentities adds
// --valid-user and --valid-group, which only apply to shares.
func (e *FormEdits) AddFlags(cmd *cobra.Command, withIdentities bool) {
	cmd.Flags().StringArrayVar(&e.Set, "set", nil, "Set a parameter (key=value, repeatable)")
	cmd.Flags().StringArrayVar(&e.Unset, "unset", nil, "Remove an advanced parameter or reset a field to its default (repeatable)")
	cmd.Flags().StringVar(&e.AdvancedFile, "advanced-file", "", "Replace the advanced parameters with the contents of a file ('-' for stdin)")
	if withIdentities {
		cmd.Flags().StringSliceVar(&e.ValidUsers, "valid-user", nil, "Add users to 'valid users' (repeatable, comma separated)")
		cmd.Flags().StringSliceVar(&e.ValidGroups, "valid-group", nil, "Add groups to 'valid users' (repeatable, comma separated)")
	}
}

// Changed reports whether any edit flag was given on cmd.
func (e *FormEdits) Changed(cmd *cobra.Command) bool {
	for _, name := range formFlags {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

// Apply returns the form to submit for the edits on top of current.
//
// Only the bound fields an edit touches are included; the server leaves
// other bound fields alone. The advanced text is always the full intended
// text, because parameters missing from it are deleted.
func (e *FormEdits) Apply(scope binding.Scope, current apiclient.Form, stdin io.Reader) (apiclient.Form, error) {
	form := apiclient.Form{Bound: make(map[string]string), Advanced: current.Advanced}

	if e.AdvancedFile != "" {
		text, err := readAdvancedFile(e.AdvancedFile, stdin)
		if err != nil {
			return form, err
		}
		form.Advanced = text
	}

	advanced, malformed := reconcile.ParseAdvanced(form.Advanced)
	if len(malformed) > 0 {
		return form, malformed[0]
	}
	advancedChanged := false

	for _, kv := range e.Set {
		raw, value, ok := strings.Cut(kv, "=")
		key := smbconf.NormalizeKey(raw)
		if !ok || key == "" {
			return form, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		value = strings.TrimSpace(value)
		if binding.IsBound(scope, key) {
			form.Bound[key] = value
			continue
		}
		advanced[key] = value
		advancedChanged = true
	}

	for _, raw := range e.Unset {
		key := smbconf.NormalizeKey(raw)
		if b, ok := binding.Lookup(scope, key); ok {
			form.Bound[key] = b.Default
			continue
		}
		if _, ok := advanced[key]; !ok {
			return form, fmt.Errorf("parameter %q is not set", smbconf.DisplayKey(key))
		}
		delete(advanced, key)
		advancedChanged = true
	}

	if len(e.ValidUsers) > 0 || len(e.ValidGroups) > 0 {
		if !binding.IsBound(scope, "valid-users") {
			return form, fmt.Errorf("'valid users' does not apply to the %s section", scope)
		}
		base, ok := form.Bound["valid-users"]
		if !ok {
			base = current.Bound["valid-users"]
		}
		list := binding.ParseIdentityList(base)
		list.Users = append(list.Users, e.ValidUsers...)
		list.Groups = append(list.Groups, e.ValidGroups...)
		form.Bound["valid-users"] = list.String()
	}

	if advancedChanged {
		form.Advanced = renderAdvanced(advanced)
	}
	return form, nil
}

// renderAdvanced writes entries as sorted "display key = value" lines.
// Bound keys are kept: the server merges them like any advanced line.
func renderAdvanced(entries map[string]string) string {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		b.WriteString(smbconf.FormatLine(key, entries[key]) + "\n")
	}
	return b.String()
}

func readAdvancedFile(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read advanced parameters: %w", err)
	}
	return string(data), nil
}

// PromptForm walks the bound fields of scope interactively, then offers to
// edit the advanced text in the user's editor. Only fields whose value
// changed are included in the returned form.
func PromptForm(scope binding.Scope, section string, current apiclient.Form) (apiclient.Form, error) {
	form := apiclient.Form{Bound: make(map[string]string), Advanced: current.Advanced}

	fmt.Printf("Editing [%s]\n", section)
	fmt.Println("Press Enter to keep the current value. Press Ctrl+C to abort.")
	fmt.Println()

	for _, b := range binding.For(scope) {
		cur := current.Bound[b.Key]
		label := fmt.Sprintf("%s (%s)", smbconf.DisplayKey(b.Key), b.Description)

		var (
			value string
			err   error
		)
		if b.Kind == binding.KindBool {
			value, err = promptBool(label, cur)
		} else {
			value, err = prompt.Input(label, cur)
		}
		if err != nil {
			return form, err
		}
		if !b.Equal(cur, value) {
			form.Bound[b.Key] = value
		}
	}

	edit, err := prompt.Confirm("Edit advanced parameters", false)
	if err != nil {
		return form, err
	}
	if edit {
		header := fmt.Sprintf("Advanced parameters of [%s], one 'key = value' per line.\n"+
			"Removing a line deletes the parameter.", section)
		text, err := prompt.EditText(current.Advanced, header)
		if err != nil {
			return form, err
		}
		if _, malformed := reconcile.ParseAdvanced(text); len(malformed) > 0 {
			return form, malformed[0]
		}
		form.Advanced = text
	}
	return form, nil
}

func promptBool(label, current string) (string, error) {
	options := []prompt.SelectOption{
		{Label: "yes", Value: "yes"},
		{Label: "no", Value: "no"},
	}
	if v, err := binding.ParseBool(current); err == nil && !v {
		options[0], options[1] = options[1], options[0]
	}
	return prompt.Select(label, options)
}
