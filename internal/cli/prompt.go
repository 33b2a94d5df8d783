package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/Flyrell/shopweek/internal/job"
)

// ConfirmFunc prompts the user for confirmation and returns true if confirmed.
type ConfirmFunc func(prompt string) (bool, error)

// NewConfirmFunc creates a ConfirmFunc using huh's interactive confirm component.
func NewConfirmFunc() ConfirmFunc {
	return func(prompt string) (bool, error) {
		var result bool
		err := huh.NewConfirm().
			Title(prompt).
			Value(&result).
			Run()
		return result, err
	}
}

// AlwaysYes returns a ConfirmFunc that always confirms.
func AlwaysYes() ConfirmFunc {
	return func(_ string) (bool, error) {
		return true, nil
	}
}

// confirmFor picks AlwaysYes when --yes was passed.
func confirmFor(yes bool) ConfirmFunc {
	if yes {
		return AlwaysYes()
	}
	return NewConfirmFunc()
}

// SelectFunc prompts the user to select one option from a list. Returns 0-based index.
type SelectFunc func(title string, options []string) (int, error)

// NewSelectFunc creates a SelectFunc using huh's interactive select component.
func NewSelectFunc() SelectFunc {
	return func(title string, options []string) (int, error) {
		var result int
		opts := make([]huh.Option[int], len(options))
		for i, o := range options {
			opts[i] = huh.NewOption(o, i)
		}
		err := huh.NewSelect[int]().
			Title(title).
			Options(opts...).
			Value(&result).
			Run()
		return result, err
	}
}

// jobFormInput holds the raw text a user typed into the job form.
type jobFormInput struct {
	Title    string
	Ref      string
	Category string
	Color    string
	FabHours string
	CutHours string
	Note     string
}

// JobFormFunc asks for the fields of a new job, starting from defaults.
type JobFormFunc func(defaults jobFormInput) (jobFormInput, error)

// NewJobFormFunc creates a JobFormFunc backed by a huh form.
func NewJobFormFunc() JobFormFunc {
	return func(in jobFormInput) (jobFormInput, error) {
		colors := make([]huh.Option[string], len(job.Colors))
		for i, c := range job.Colors {
			colors[i] = huh.NewOption(Swatch(c, "    ")+" "+c, c)
		}
		if in.Color == "" {
			in.Color = job.DefaultColor
		}
		if in.Category == "" {
			in.Category = string(job.Windows)
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Title").Value(&in.Title).Validate(func(s string) error {
					if s == "" {
						return job.ErrEmptyTitle
					}
					return nil
				}),
				huh.NewInput().Title("VQuote / reference").Value(&in.Ref),
				huh.NewSelect[string]().Title("Type").Options(
					huh.NewOption("Windows", string(job.Windows)),
					huh.NewOption("Screens (may run on locked Fridays)", string(job.Screens)),
				).Value(&in.Category),
			),
			huh.NewGroup(
				huh.NewInput().Title("Fab hours").Value(&in.FabHours).Validate(validHours),
				huh.NewInput().Title("Cut hours").Value(&in.CutHours).Validate(validHours),
				huh.NewSelect[string]().Title("Colour").Options(colors...).Value(&in.Color),
				huh.NewText().Title("Note").Value(&in.Note),
			),
		)
		if err := form.Run(); err != nil {
			return jobFormInput{}, err
		}
		return in, nil
	}
}

func validHours(s string) error {
	if s == "" {
		return nil
	}
	if _, err := job.ParseHours(s); err != nil {
		return fmt.Errorf("enter hours like 4, 3.5 or 3h30m")
	}
	return nil
}
