package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
)

func newProjectsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage your project submissions",
	}
	cmd.AddCommand(
		newProjectsListCommand(e),
		newProjectsCreateCommand(e),
		newProjectsEditCommand(e),
		newProjectsDeleteCommand(e),
	)
	return cmd
}

func statusColor(s projectdomain.Status) string {
	switch s {
	case projectdomain.StatusApproved:
		return color.GreenString(string(s))
	case projectdomain.StatusRejected:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func newProjectsListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if len(d.Projects) == 0 {
				e.printf("No projects yet. Create one with 'sakura projects create'.\n")
				return nil
			}

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tHOURS\tTECHNOLOGIES")
			for _, p := range d.Projects {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Title, statusColor(p.Status), p.TotalHours, strings.Join(p.Technologies, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if d.Running != nil && d.Selected != nil {
				e.printf("\n%s\n", color.CyanString("Timer running on %s", d.Selected.Title))
			}
			return nil
		},
	}
}

func newProjectsCreateCommand(e *env) *cobra.Command {
	var in projectdomain.CreateInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			p, err := d.Create(ctx, in)
			if err != nil {
				return err
			}

			e.printf("%s\n", color.GreenString("Project created"))
			e.printf("ID: %s\nTitle: %s\nStatus: %s\n", p.ID, p.Title, p.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "project title")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	cmd.Flags().StringVar(&in.RepositoryURL, "repo", "", "GitHub, GitLab or Bitbucket URL")
	cmd.Flags().StringVar(&in.LiveURL, "live", "", "live demo URL")
	cmd.Flags().StringSliceVar(&in.Technologies, "tech", nil, "technology used (repeatable or comma separated)")
	return cmd
}

func newProjectsEditCommand(e *env) *cobra.Command {
	var (
		title, description, repo, live string
		tech                           []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a project; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch projectdomain.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("repo") {
				patch.RepositoryURL = &repo
			}
			if flags.Changed("live") {
				patch.LiveURL = &live
			}
			if flags.Changed("tech") {
				patch.Technologies = &tech
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			p, err := d.Edit(ctx, args[0], patch)
			if err != nil {
				return err
			}
			e.printf("%s\n", color.GreenString("Updated %s", p.Title))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "project title")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&repo, "repo", "", "repository URL, empty to clear")
	cmd.Flags().StringVar(&live, "live", "", "live demo URL, empty to clear")
	cmd.Flags().StringSliceVar(&tech, "tech", nil, "replace the technologies")
	return cmd
}

func newProjectsDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			d, err := e.signedIn(ctx)
			if err != nil {
				return err
			}
			if err := d.Delete(ctx, args[0]); err != nil {
				return err
			}
			e.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
