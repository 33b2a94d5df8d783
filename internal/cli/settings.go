package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/capacity"
	"github.com/Flyrell/shopweek/internal/job"
)

var settingsCmd = GroupCommand{
	Use:   "settings",
	Short: "Read and change the default daily capacities",
	Subcommands: []*cobra.Command{
		settingsGetCmd,
		settingsSetCmd,
	},
}.Build()

var settingsGetCmd = LeafCommand{
	Use:   "get [key]",
	Short: "Show one or all capacity settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		return withApp(cmd, func(a *app) error {
			return runSettingsGet(cmd, a, key)
		})
	},
}.Build()

var settingsSetCmd = LeafCommand{
	Use:   "set <key> <value>",
	Short: "Change a capacity setting",
	Example: `  shopweek settings set mon_thu 12
  shopweek settings set include_saturday true
  shopweek settings set cut_fri 6`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runSettingsSet(cmd, a, args[0], args[1])
		})
	},
}.Build()

// settingField exposes one capacity setting by its key.
type settingField struct {
	usage string
	get   func(s capacity.Settings) string
	set   func(s *capacity.Settings, value string) error
}

func hoursField(usage string, field func(s *capacity.Settings) *float64) settingField {
	return settingField{
		usage: usage,
		get: func(s capacity.Settings) string {
			return job.FormatHours(*field(&s))
		},
		set: func(s *capacity.Settings, value string) error {
			h, err := job.ParseHours(value)
			if err != nil {
				return err
			}
			*field(s) = h
			return nil
		},
	}
}

var settingFields = map[string]settingField{
	"mon_thu": hoursField("fab hours Monday to Thursday",
		func(s *capacity.Settings) *float64 { return &s.MonThu }),
	"fri_unlocked": hoursField("fab hours on an open Friday",
		func(s *capacity.Settings) *float64 { return &s.FriUnlocked }),
	"fri_locked": hoursField("fab hours on a locked Friday",
		func(s *capacity.Settings) *float64 { return &s.FriLocked }),
	"saturday": hoursField("fab hours on Saturday",
		func(s *capacity.Settings) *float64 { return &s.Saturday }),
	"cut_mon_thu": hoursField("cut hours Monday to Thursday",
		func(s *capacity.Settings) *float64 { return &s.CutMonThu }),
	"cut_fri": hoursField("cut hours on Friday",
		func(s *capacity.Settings) *float64 { return &s.CutFri }),
	"include_saturday": {
		usage: "show and schedule Saturdays",
		get: func(s capacity.Settings) string {
			return strconv.FormatBool(s.IncludeSaturday)
		},
		set: func(s *capacity.Settings, value string) error {
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "yes", "on":
				s.IncludeSaturday = true
				return nil
			case "no", "off":
				s.IncludeSaturday = false
				return nil
			}
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid boolean %q", value)
			}
			s.IncludeSaturday = b
			return nil
		},
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for k := range settingFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lookupSetting(key string) (settingField, error) {
	f, ok := settingFields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return settingField{}, fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(settingKeys(), ", "))
	}
	return f, nil
}

func runSettingsGet(cmd *cobra.Command, a *app, key string) error {
	settings, err := a.svc.Settings(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if key != "" {
		f, err := lookupSetting(key)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, f.get(settings))
		return nil
	}
	for _, k := range settingKeys() {
		f := settingFields[k]
		_, _ = fmt.Fprintf(w, "%s %s  %s\n", Primary(padRight(k, 16)), padRight(f.get(settings), 6), Silent(f.usage))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, a *app, key, value string) error {
	f, err := lookupSetting(key)
	if err != nil {
		return err
	}
	settings, err := a.svc.Settings(cmd.Context())
	if err != nil {
		return err
	}
	if err := f.set(&settings, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := a.svc.UpdateSettings(cmd.Context(), settings); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("%s set to %s", Primary(key), f.get(settings))))
	return nil
}
