package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/rjt/pkg/compiler"
)

func inspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <template>",
		Short: "Show the tags a template uses and how each compiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the inspection as JSON")

	return cmd
}

func (a *app) runInspect(stdout io.Writer, arg string, asJSON bool) error {
	paths, err := a.templates([]string{arg})
	if err != nil {
		return err
	}

	tc, err := a.newToolchain(false)
	if err != nil {
		return err
	}
	defer tc.Close()

	in, err := tc.compiler.Inspect(paths[0], a.config.Syntax, tc.cache)
	if err != nil {
		return err
	}
	in.File = a.relPath(in.File)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(in); err != nil {
			return fmt.Errorf("failed to encode inspection: %w", err)
		}
	} else {
		printInspection(stdout, in)
	}

	if in.Failed() {
		return errFailed
	}
	return nil
}

// printInspection prints a human-readable inspection.
func printInspection(w io.Writer, in *compiler.Inspection) {
	props := "untyped"
	if in.PropsTyped {
		props = "Props"
	}
	fmt.Fprintf(w, "%s  [props: %s]\n", in.File, props)

	fmt.Fprintln(w)
	if len(in.Imports) == 0 {
		fmt.Fprintln(w, "Imports  (none)")
	} else {
		fmt.Fprintln(w, "Imports")
		for _, imp := range in.Imports {
			fmt.Fprintf(w, "  %q\n", imp)
		}
	}

	fmt.Fprintln(w)
	if len(in.Tags) == 0 {
		fmt.Fprintf(w, "Tags  (none, %d fragments)\n", in.Fragments)
		return
	}
	fmt.Fprintf(w, "Tags  (%d fragments)\n", in.Fragments)

	tagW := len("TAG")
	posW := len("AT")
	for _, tag := range in.Tags {
		tagW = max(tagW, len(tag.Tag))
		posW = max(posW, len(position(tag)))
	}
	fmt.Fprintf(w, "  %-*s  %-*s  %s\n", tagW, "TAG", posW, "AT", "COMPILES TO")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", tagW+posW+4+len("COMPILES TO")))

	for _, tag := range in.Tags {
		target := "-"
		switch {
		case tag.Error != "":
			target = "error: " + tag.Error
		case tag.Component != nil:
			target = tag.Component.String()
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %s\n", tagW, tag.Tag, posW, position(tag), target)

		var details []string
		if len(tag.Props) > 0 {
			details = append(details, "props: "+strings.Join(tag.Props, ", "))
		}
		if tag.Spreads > 0 {
			details = append(details, fmt.Sprintf("spreads: %d", tag.Spreads))
		}
		if tag.Children > 0 {
			details = append(details, fmt.Sprintf("children: %d", tag.Children))
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "  %s  %s\n", strings.Repeat(" ", tagW), strings.Join(details, "  "))
		}
	}
}

func position(tag compiler.TagUsage) string {
	return fmt.Sprintf("%d:%d", tag.Line, tag.Column)
}
