package main

import (
	"errors"
	"io/ioutil"
	"strconv"

	"github.com/nicolagi/blogposts/post"
	"github.com/spf13/cobra"
)

// bodyFlags collects a request body, inline or from a file ("-" for stdin).
type bodyFlags struct {
	data string
	file string
}

func (b *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.data, "data", "d", "", "post fields as a JSON object")
	cmd.Flags().StringVarP(&b.file, "file", "f", "", "read post fields from file (- for stdin)")
}

func (b *bodyFlags) read(cmd *cobra.Command) (post.Post, error) {
	var raw []byte
	switch {
	case b.data != "" && b.file != "":
		return post.Post{}, errors.New("use either --data or --file, not both")
	case b.data != "":
		raw = []byte(b.data)
	case b.file == "-":
		var err error
		if raw, err = ioutil.ReadAll(cmd.InOrStdin()); err != nil {
			return post.Post{}, err
		}
	case b.file != "":
		var err error
		if raw, err = ioutil.ReadFile(b.file); err != nil {
			return post.Post{}, err
		}
	default:
		return post.Post{}, errors.New("missing --data or --file")
	}
	return post.Parse(raw)
}

func parseID(arg string) (int64, error) {
	return strconv.ParseInt(arg, 10, 64)
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := g.client().List()
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), posts)
		},
	}
}

func newGetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := g.client().Get(id)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), p)
		},
	}
}

func newCreateCmd(g *globals) *cobra.Command {
	var b bodyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := b.read(cmd)
			if err != nil {
				return err
			}
			p, err := g.client().Create(body)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), p)
		},
	}
	b.register(cmd)
	return cmd
}

func newReplaceCmd(g *globals) *cobra.Command {
	var b bodyFlags
	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace all fields of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body, err := b.read(cmd)
			if err != nil {
				return err
			}
			p, err := g.client().Replace(id, body)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), p)
		},
	}
	b.register(cmd)
	return cmd
}

func newPatchCmd(g *globals) *cobra.Command {
	var b bodyFlags
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Merge fields into a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body, err := b.read(cmd)
			if err != nil {
				return err
			}
			p, err := g.client().Patch(id, body)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), p)
		},
	}
	b.register(cmd)
	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := g.client().Delete(id)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), p)
		},
	}
}
