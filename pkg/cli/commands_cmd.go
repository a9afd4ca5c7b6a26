package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandInfo describes one command of the tree.
type commandInfo struct {
	Path    string     `json:"path"`
	Short   string     `json:"short"`
	Args    string     `json:"args,omitempty"`
	Example string     `json:"example,omitempty"`
	Flags   []flagInfo `json:"flags,omitempty"`
}

// flagInfo describes one flag of a command.
type flagInfo struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Default   string `json:"default,omitempty"`
	Usage     string `json:"usage,omitempty"`
	Inherited bool   `json:"inherited,omitempty"`
}

func newCommandsCmd() *cobra.Command {
	var (
		filter    string
		inherited bool
	)
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List every command with its flags",
		Long:  "Walk the command tree and print each command, its arguments and its flags. Works offline.",
		Example: `  themes commands
  themes commands --filter forced -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := listCommands(cmd.Root(), "", inherited)
			if filter != "" {
				needle := strings.ToLower(filter)
				infos = slices.DeleteFunc(infos, func(c commandInfo) bool {
					return !strings.Contains(strings.ToLower(c.searchText()), needle)
				})
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			rows := make([][]string, 0, len(infos))
			for _, c := range infos {
				names := make([]string, len(c.Flags))
				for i, f := range c.Flags {
					names[i] = "--" + f.Name
				}
				rows = append(rows, []string{c.Path, c.Args, strings.Join(names, " "), c.Short})
			}
			return printTable(cmd.OutOrStdout(), []string{"command", "args", "flags", "description"}, rows)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Substring match on command paths, descriptions and flag names")
	cmd.Flags().BoolVar(&inherited, "inherited", false, "Include the global flags on every command")
	return cmd
}

func (c commandInfo) searchText() string {
	parts := []string{c.Path, c.Short}
	for _, f := range c.Flags {
		parts = append(parts, f.Name, f.Usage)
	}
	return strings.Join(parts, " ")
}

// listCommands collects the runnable commands below parent.
func listCommands(parent *cobra.Command, prefix string, inherited bool) []commandInfo {
	var out []commandInfo
	for _, child := range parent.Commands() {
		if child.Hidden || child.Name() == "help" {
			continue
		}
		path := strings.TrimSpace(prefix + " " + child.Name())
		if child.HasSubCommands() {
			out = append(out, listCommands(child, path, inherited)...)
			continue
		}
		_, args, _ := strings.Cut(child.Use, " ")
		out = append(out, commandInfo{
			Path:    path,
			Short:   child.Short,
			Args:    args,
			Example: child.Example,
			Flags:   commandFlags(child, inherited),
		})
	}
	return out
}

func commandFlags(cmd *cobra.Command, inherited bool) []flagInfo {
	var flags []flagInfo
	add := func(isInherited bool) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Hidden || f.Name == "help" {
				return
			}
			flags = append(flags, flagInfo{
				Name:      f.Name,
				Shorthand: f.Shorthand,
				Type:      f.Value.Type(),
				Default:   f.DefValue,
				Usage:     f.Usage,
				Inherited: isInherited,
			})
		}
	}
	cmd.LocalFlags().VisitAll(add(false))
	if inherited {
		cmd.InheritedFlags().VisitAll(add(true))
	}
	return flags
}
