package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), settings.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "get key",
			Short: "Print a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				value := settings.Get(args[0], nil)
				if value == nil {
					return fmt.Errorf("unknown setting %q", args[0])
				}
				if list, ok := value.([]string); ok {
					value = strings.Join(list, ",")
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set key value",
			Short: "Change and save a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := root.openSettings()
				if err != nil {
					return err
				}
				key := args[0]
				value, err := parseSetting(settings.Get(key, nil), args[1])
				if err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				if err := settings.Set(key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, args[1])
				return nil
			},
		},
	)
	return cmd
}

// parseSetting converts raw to the type of the current value
func parseSetting(current any, raw string) (any, error) {
	switch current.(type) {
	case bool:
		return strconv.ParseBool(raw)
	case int:
		return strconv.Atoi(raw)
	case []string:
		var list []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		if list == nil {
			list = []string{}
		}
		return list, nil
	case string:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown setting")
	}
}
