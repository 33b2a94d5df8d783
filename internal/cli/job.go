package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var jobCmd = GroupCommand{
	Use:   "job",
	Short: "Manage jobs",
	Subcommands: []*cobra.Command{
		jobAddCmd,
		jobEditCmd,
		jobRemoveCmd,
		jobListCmd,
	},
}.Build()

// jobFieldFlags are shared by job add and job edit.
var jobFieldFlags = []StringFlag{
	{Name: "ref", Short: "r", Usage: "VQuote or other reference"},
	{Name: "type", Short: "t", Usage: "job type: windows or screens"},
	{Name: "color", Usage: "card colour as #rrggbb"},
	{Name: "note", Short: "n", Usage: "note shown on the first scheduled day (markdown)"},
	{Name: "fab", Usage: "fab hours, e.g. 12 or 3h30m"},
	{Name: "fab-extra", Usage: "extra fab hours"},
	{Name: "cut", Usage: "cut hours"},
	{Name: "cut-extra", Usage: "extra cut hours"},
}

// jobFlags holds the job field flags and whether each was passed.
type jobFlags struct {
	values  map[string]string
	changed map[string]bool
}

func readJobFlags(cmd *cobra.Command) jobFlags {
	f := jobFlags{values: map[string]string{}, changed: map[string]bool{}}
	for _, def := range jobFieldFlags {
		v, _ := cmd.Flags().GetString(def.Name)
		f.values[def.Name] = v
		f.changed[def.Name] = cmd.Flags().Changed(def.Name)
	}
	return f
}

// any reports whether any field flag was passed.
func (f jobFlags) any() bool {
	for _, c := range f.changed {
		if c {
			return true
		}
	}
	return false
}

// apply copies every passed flag onto j.
func (f jobFlags) apply(j job.Job) (job.Job, error) {
	if f.changed["ref"] {
		j.Ref = f.values["ref"]
	}
	if f.changed["type"] {
		c, err := job.ParseCategory(f.values["type"])
		if err != nil {
			return job.Job{}, err
		}
		j.Category = c
	}
	if f.changed["color"] {
		j.Color = f.values["color"]
	}
	if f.changed["note"] {
		j.Note = f.values["note"]
	}
	hours := []struct {
		flag string
		dst  *float64
	}{
		{"fab", &j.Fab.Work.Base},
		{"fab-extra", &j.Fab.Work.Extra},
		{"cut", &j.Cut.Work.Base},
		{"cut-extra", &j.Cut.Work.Extra},
	}
	for _, h := range hours {
		if !f.changed[h.flag] {
			continue
		}
		v, err := job.ParseHours(f.values[h.flag])
		if err != nil {
			return job.Job{}, fmt.Errorf("--%s: %w", h.flag, err)
		}
		*h.dst = v
	}
	return j, nil
}

// jobLabel renders a job for one-line messages.
func jobLabel(j job.Job) string {
	label := Primary(job.FormatTitle(j.Title))
	if j.Ref != "" {
		label += " " + Silent("("+j.Ref+")")
	}
	return label
}

// shortID trims a uuid for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
