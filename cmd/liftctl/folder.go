package main

import (
	"fmt"

	"github.com/2beens/liftlog/internal/gymstats/folders"

	"github.com/spf13/cobra"
)

func newFolderCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Organize routine folders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List folders with their templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := newApp(opts).folders.Listing(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range listing.Folders {
				fmt.Fprintf(out, "%s [%s] %d templates\n", f.Name, f.ID, len(f.Templates))
			}
			fmt.Fprintf(out, "unfoldered: %d templates\n", len(listing.UnfolderedTemplates))
			return nil
		},
	})

	var color string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := folders.CreateRequest{Name: args[0], Color: color}
			if err := req.Validate(); err != nil {
				return err
			}

			a := newApp(opts)
			if _, err := a.folders.Listing(cmd.Context()); err != nil {
				return err
			}
			pending, err := a.folders.CreateFolder(cmd.Context(), req)
			if err != nil {
				return err
			}
			created, err := pending.Wait()
			if err != nil {
				return fmt.Errorf("create folder: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folder %s created [%s]\n", created.Name, created.ID)
			return nil
		},
	}
	create.Flags().StringVar(&color, "color", "", "folder color, e.g. #3b82f6")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder; its templates are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			if _, err := a.folders.Listing(cmd.Context()); err != nil {
				return err
			}
			pending, err := a.folders.DeleteFolder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := pending.Wait(); err != nil {
				return fmt.Errorf("delete folder %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folder %s deleted\n", args[0])
			return nil
		},
	})
	return cmd
}
