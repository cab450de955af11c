// Package prompt wraps promptui for the interactive parts of smbmctl:
// login, account creation and the share and global edit forms.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user presses Ctrl+C at a prompt.
var ErrAborted = errors.New("aborted")

// ErrPasswordMismatch is returned when the confirmation differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// IsAborted reports whether err came from the user aborting a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort)
}

func run(p promptui.Prompt) (string, error) {
	s, err := p.Run()
	if err != nil && IsAborted(err) {
		return "", ErrAborted
	}
	return s, err
}

// Input asks for free text, offering def as the editable default.
func Input(label, def string) (string, error) {
	return run(promptui.Prompt{Label: label, Default: def, AllowEdit: def != ""})
}

// InputRequired asks for non-blank text.
func InputRequired(label string) (string, error) {
	return run(promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", strings.ToLower(label))
			}
			return nil
		},
	})
}

// Password asks for a secret without echoing it.
func Password(label string) (string, error) {
	return run(promptui.Prompt{Label: label, Mask: '*'})
}

// PasswordWithConfirmation asks for a new secret of at least minLength
// bytes, then for the same secret again.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	pw, err := run(promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	again, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", ErrPasswordMismatch
	}
	return pw, nil
}

// SelectOption is one entry of a Select list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// Select asks the user to pick one option and returns its Value.
func Select(label string, options []SelectOption) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "* {{ .Label | green }}",
	}
	if len(options) > 0 && options[0].Description != "" {
		templates.Details = `{{ "Description:" | faint }}	{{ .Description }}`
	}

	i, _, err := (&promptui.Select{Label: label, Items: options, Templates: templates, Size: 10}).Run()
	if err != nil {
		if IsAborted(err) {
			return "", ErrAborted
		}
		return "", err
	}
	return options[i].Value, nil
}

// Confirm asks a yes/no question. An empty answer picks defaultYes.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	p := promptui.Prompt{Label: fmt.Sprintf("%s [%s]", label, hint), IsConfirm: true}
	answer, err := p.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports "n" as ErrAbort
		if answer == "" {
			return defaultYes, nil
		}
		return false, nil
	case err != nil:
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes, nil
	}
	return answer == "y" || answer == "yes", nil
}

// ConfirmWithForce skips the question when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}
