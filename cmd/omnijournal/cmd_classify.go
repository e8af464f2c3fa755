package main

import (
	"fmt"
	"strings"

	"omnijournal/pkg/classify"

	"github.com/spf13/cobra"
)

// newClassifyCmd creates the "omnijournal classify" subcommand, which shows
// the category and harvest prompt the configured rules give a window.
func newClassifyCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <app> [title...]",
		Short: "Show the category assigned to an application and window title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			c := classify.New(cfg.ClassifierRules())
			cat, prompt := c.Classify(args[0], strings.Join(args[1:], " "))

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "category: %s\n", cat)
			fmt.Fprintf(w, "work:     %t\n", cat.IsWork())
			fmt.Fprintf(w, "prompt:   %s\n", prompt)
			return nil
		},
	}
}
