package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// "Usage:", "Available Commands:", "Flags:"
	sectionHeaderRe = regexp.MustCompile(`^[A-Z][A-Za-z ]+:$`)
	// "  commandname   description text"
	commandListingRe = regexp.MustCompile(`^( {2})(\S+)(\s{2,}.*)$`)
	// "  -f, --flag-name type   description"
	flagLineRe = regexp.MustCompile(`^( +)(-.+?)( {2,}.*)$`)
	// example invocations, "  shopweek move smith monday"
	exampleRe = regexp.MustCompile(`^( +)(shopweek .*)$`)
	footerRe  = regexp.MustCompile(`^Use "`)
)

// colorizedHelpFunc returns a help function that colorizes cobra's default usage text.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		origOut := cmd.OutOrStdout()

		var buf strings.Builder
		cmd.SetOut(&buf)
		cmd.InitDefaultHelpFlag()
		_ = cmd.Usage()
		cmd.SetOut(origOut)

		var result strings.Builder
		if cmd.Short != "" && cmd.HasParent() {
			result.WriteString(Text(cmd.Short))
			result.WriteString("\n\n")
		}
		for _, line := range strings.Split(buf.String(), "\n") {
			result.WriteString(colorizeLine(line))
			result.WriteString("\n")
		}
		cmd.Print(strings.TrimRight(result.String(), "\n") + "\n")
	}
}

// colorizeLine applies color rules to a single line of help output.
func colorizeLine(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case sectionHeaderRe.MatchString(trimmed):
		return Info(line)
	case footerRe.MatchString(trimmed):
		return Silent(line)
	}
	if m := exampleRe.FindStringSubmatch(line); m != nil {
		return m[1] + Silent(m[2])
	}
	if m := flagLineRe.FindStringSubmatch(line); m != nil {
		return m[1] + Primary(m[2]) + Text(m[3])
	}
	if m := commandListingRe.FindStringSubmatch(line); m != nil {
		return m[1] + Primary(m[2]) + Text(m[3])
	}
	return Text(line)
}
