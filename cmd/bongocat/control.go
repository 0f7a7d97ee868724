package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/bongocat/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := ipc.NewClient().GetStatus()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, status)
		}
		app := status.CurrentApp
		if status.CurrentAppName != "" {
			app = fmt.Sprintf("%s (%s)", status.CurrentAppName, status.CurrentApp)
		}
		if app == "" {
			app = "-"
		}
		fmt.Fprintf(out, "daemon_running: %v\n", status.DaemonRunning)
		fmt.Fprintf(out, "instance:       %s\n", status.InstanceID)
		fmt.Fprintf(out, "state:          %s\n", status.State)
		fmt.Fprintf(out, "visible:        %v\n", status.Visible)
		fmt.Fprintf(out, "position:       %.0f,%.0f (%s)\n", status.X, status.Y, status.CornerMode)
		fmt.Fprintf(out, "current_app:    %s\n", app)
		fmt.Fprintf(out, "per_app:        %s\n", onOff(status.PerAppEnabled))
		fmt.Fprintf(out, "ignore_clicks:  %s\n", onOff(status.IgnoreClicks))
		fmt.Fprintf(out, "uptime_seconds: %d\n", status.UptimeSeconds)
		return nil
	},
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors as the daemon sees them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := ipc.NewClient().GetMonitors()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, data)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRIMARY\tGEOMETRY\tUSABLE")
		for _, m := range data.Monitors {
			fmt.Fprintf(tw, "%d\t%s\t%v\t%dx%d+%d+%d\t%dx%d+%d+%d\n",
				m.ID, m.Name, m.Primary,
				m.Width, m.Height, m.X, m.Y,
				m.UsableWidth, m.UsableHeight, m.UsableX, m.UsableY)
		}
		return tw.Flush()
	},
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Manage remembered per-app positions",
}

var positionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := ipc.NewClient().ListPositions()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(out, data)
		}
		fmt.Fprintf(out, "per_app: %s\n", onOff(data.Enabled))
		if len(data.Positions) == 0 {
			fmt.Fprintln(out, "no remembered positions")
		} else {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "APP\tNAME\tX\tY\tHIDDEN")
			for _, p := range data.Positions {
				fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%v\n", p.AppID, p.DisplayName, p.X, p.Y, p.Hidden)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		for _, app := range data.HiddenApps {
			fmt.Fprintf(out, "hidden for: %s\n", app)
		}
		return nil
	},
}

var positionsDeleteCmd = &cobra.Command{
	Use:   "delete <app-id>",
	Short: "Forget the position for one app",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return ipc.NewClient().DeletePosition(args[0])
	},
}

var positionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered position",
	Long:  "Forget every remembered position. With --hidden, also forget every per-app hide. Asks for confirmation on a terminal unless --yes is given.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		hidden, _ := cmd.Flags().GetBool("hidden")
		if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
			confirmed := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Forget all remembered positions?").
					Affirmative("Forget").
					Negative("Cancel").
					Value(&confirmed),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
		}
		client := ipc.NewClient()
		if err := client.ClearPositions(); err != nil {
			return err
		}
		if hidden {
			return client.ClearHidden()
		}
		return nil
	},
}

var placeCmd = &cobra.Command{
	Use:   "place [corner]",
	Short: "Move the cat to a corner or to --x/--y",
	Long:  "Move the cat to top-left, top-right, bottom-left or bottom-right of its screen, or to absolute coordinates with --x and --y.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlace,
}

func runPlace(cmd *cobra.Command, args []string) error {
	xSet := cmd.Flags().Changed("x")
	ySet := cmd.Flags().Changed("y")
	if xSet != ySet {
		return fmt.Errorf("--x and --y must be given together")
	}
	if len(args) == 1 && xSet {
		return fmt.Errorf("pass either a corner or --x/--y, not both")
	}

	client := ipc.NewClient()
	var (
		p   *ipc.PointPayload
		err error
	)
	switch {
	case len(args) == 1:
		p, err = client.PlaceCorner(args[0])
	case xSet:
		x, _ := cmd.Flags().GetFloat64("x")
		y, _ := cmd.Flags().GetFloat64("y")
		p, err = client.PlaceAt(x, y)
	default:
		return fmt.Errorf("a corner or --x/--y is required")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatPoint(p.X, p.Y))
	return nil
}

func visibilityCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			visible, err := ipc.NewClient().SetVisibility(action)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "visible: %v\n", visible)
			return nil
		},
	}
}

func appHiddenCmd(use string, hidden bool, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [app-id]",
		Short: short,
		Long:  short + ". Without an app id the current foreground app is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			appID := ""
			if len(args) == 1 {
				appID = args[0]
			}
			return ipc.NewClient().SetAppHidden(appID, hidden)
		},
	}
}

func toggleCmd(use, short string, apply func(*ipc.Client, bool) error) *cobra.Command {
	return &cobra.Command{
		Use:       use + " on|off",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return apply(ipc.NewClient(), v)
		},
	}
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return the cat to its idle pose",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return ipc.NewClient().ResetAnimation()
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the daemon to re-read its config file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return ipc.NewClient().Reload()
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	monitorsCmd.Flags().Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	positionsListCmd.Flags().Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	positionsClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	positionsClearCmd.Flags().Bool("hidden", false, "Also forget every per-app hide")
	placeCmd.Flags().Float64("x", 0, "Absolute x coordinate")
	placeCmd.Flags().Float64("y", 0, "Absolute y coordinate")

	positionsCmd.AddCommand(positionsListCmd, positionsDeleteCmd, positionsClearCmd)

	rootCmd.AddCommand(
		statusCmd,
		monitorsCmd,
		positionsCmd,
		placeCmd,
		visibilityCmd(ipc.VisibilityShow, "Show the cat"),
		visibilityCmd(ipc.VisibilityHide, "Hide the cat"),
		visibilityCmd(ipc.VisibilityToggle, "Toggle the cat's visibility"),
		appHiddenCmd("hide-app", true, "Hide the cat while an app is in front"),
		appHiddenCmd("show-app", false, "Stop hiding the cat for an app"),
		toggleCmd("clicks", "Turn mouse-click animation on or off", func(c *ipc.Client, on bool) error {
			return c.SetIgnoreClicks(!on)
		}),
		toggleCmd("per-app", "Turn per-app positions on or off", (*ipc.Client).SetPerApp),
		resetCmd,
		reloadCmd,
	)
}

func formatPoint(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 0, 64) + "," + strconv.FormatFloat(y, 'f', 0, 64)
}
