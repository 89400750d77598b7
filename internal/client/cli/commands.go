package cli

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atinyakov/animaltrack/internal/client/listsync"
	"github.com/atinyakov/animaltrack/internal/models"
)

func newLoginCmd(ro *rootOptions) *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "e-mail address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")

	cmd.RunE = ro.run(func(ctx context.Context, rt *runtime, _ []string) error {
		if rt.app.Start(ctx) {
			fmt.Fprintln(rt.out, "Already logged in")
			return nil
		}
		if password == "" {
			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = line
		}
		if err := rt.app.Login(ctx, user, password); err != nil {
			return errReported
		}
		fmt.Fprintln(rt.out, "Logged in")
		return nil
	})
	return cmd
}

func newListCmd(ro *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the animal list, refreshed from the server",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only animals whose name or location contains this text")

	cmd.RunE = ro.run(func(ctx context.Context, rt *runtime, _ []string) error {
		if err := focusList(ctx, rt); err != nil {
			return err
		}
		rt.app.List.SetFilter(filter)
		printAnimals(rt.out, rt.app.List)
		return nil
	})
	return cmd
}

func newShowCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one animal",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, rt *runtime, args []string) error {
			if err := focusList(ctx, rt); err != nil {
				return err
			}
			a, ok := rt.app.List.Find(args[0])
			if !ok {
				return fmt.Errorf("animal %s not found", args[0])
			}
			printAnimal(rt.out, a)
			return nil
		}),
	}
}

func newEditCmd(ro *rootOptions) *cobra.Command {
	var name, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the name or status of an animal",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&status, "status", "", "new status")

	cmd.RunE = ro.run(func(ctx context.Context, rt *runtime, args []string) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("status") {
			return fmt.Errorf("nothing to change, pass --name and/or --status")
		}
		if err := focusList(ctx, rt); err != nil {
			return err
		}
		a, ok := rt.app.List.Find(args[0])
		if !ok {
			return fmt.Errorf("animal %s not found", args[0])
		}

		ed := rt.app.Open(a)
		if cmd.Flags().Changed("name") {
			ed.SetName(name)
		}
		if cmd.Flags().Changed("status") {
			ed.SetStatus(status)
		}
		if err := ed.Submit(ctx); err != nil {
			return errReported
		}
		fmt.Fprintln(rt.out, "Animal updated")
		return nil
	})
	return cmd
}

func newDeleteCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <fid>",
		Short: "Remove an animal by its server id",
		Args:  cobra.ExactArgs(1),
		RunE: ro.run(func(ctx context.Context, rt *runtime, args []string) error {
			if !rt.app.Start(ctx) {
				return errNotLoggedIn
			}
			if err := rt.app.List.Delete(ctx, args[0]); err != nil {
				return errReported
			}
			fmt.Fprintln(rt.out, "Animal deleted")
			return nil
		}),
	}
}

func newLogoutCmd(ro *rootOptions) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "also drop the offline animal list")

	cmd.RunE = ro.run(func(ctx context.Context, rt *runtime, _ []string) error {
		if err := rt.app.Logout(ctx, purge); err != nil {
			return errReported
		}
		fmt.Fprintln(rt.out, "Logged out")
		return nil
	})
	return cmd
}

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "animaltrack\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}

// focusList requires a session and runs one synchronization pass. A failed
// refresh is fine as long as something (the offline list) can be shown.
func focusList(ctx context.Context, rt *runtime) error {
	if !rt.app.Start(ctx) {
		return errNotLoggedIn
	}
	_ = rt.app.List.Focus(ctx)
	if rt.app.List.State().Status == listsync.StatusError {
		return errReported
	}
	return nil
}

func printAnimals(w io.Writer, list *listsync.Synchronizer) {
	animals := list.Visible()
	filter := list.FilterText()
	if len(animals) == 0 {
		if filter != "" {
			fmt.Fprintf(w, "No animals match %q\n", filter)
			return
		}
		fmt.Fprintln(w, "No animals")
		return
	}
	if filter != "" {
		fmt.Fprintf(w, "Filter: %q\n", filter)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFID\tNAME\tLOCATION\tSTATUS")
	for _, a := range animals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.FID, a.Name, a.Location, a.Status)
	}
	tw.Flush()
}

func printAnimal(w io.Writer, a models.Animal) {
	fmt.Fprintf(w, "ID: %s\nFID: %s\nName: %s\nStatus: %s\nLocation: %s\nBreed: %s\nType: %s\nTracking code: %s\n",
		a.ID, a.FID, a.Name, a.Status, a.Location, a.Breed, a.AnimalType, a.TrackingCode)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
