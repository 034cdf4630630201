package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/nicolagi/blogposts/client"
	"github.com/nicolagi/blogposts/post"
	"github.com/spf13/cobra"
)

type globals struct {
	server string
	format string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Command line client for blogserver",
		Long: `blogctl - list, read, create, replace, patch and delete blog posts
held by a blogserver.

Examples:
  blogctl list
  blogctl create --data '{"title":"Hello"}'
  blogctl patch 1 -f changes.json
  blogctl get 1 --format yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch g.format {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unknown format %q, want json or yaml", g.format)
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&g.server, "server", "s", "localhost:9999", "server address (host:port)")
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "json", "output format (json or yaml)")

	rootCmd.AddCommand(
		newListCmd(g),
		newGetCmd(g),
		newCreateCmd(g),
		newReplaceCmd(g),
		newPatchCmd(g),
		newDeleteCmd(g),
	)
	return rootCmd
}

func (g *globals) client() *client.Client {
	return client.New(client.WithAddress(g.server))
}

// print writes v to w in the selected format.
func (g *globals) print(w io.Writer, v interface{}) error {
	data, err := post.MarshalIndent(v)
	if err != nil {
		return err
	}
	if g.format == "yaml" {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
