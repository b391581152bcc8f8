package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xyz-asif/mangrovewatch/internal/access"
	"github.com/xyz-asif/mangrovewatch/internal/client"
	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/leaderboard"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
	"github.com/xyz-asif/mangrovewatch/internal/session"
)

// NewRootCommand builds the mangrove command tree. Output goes to out,
// diagnostics to errOut, and prompts read from in.
func NewRootCommand(out, errOut io.Writer, in io.Reader) *cobra.Command {
	var (
		configPath string
		server     string
		app        *App
	)

	root := &cobra.Command{
		Use:           "mangrove",
		Short:         "Report and track mangrove damage from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				path, err := DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if server != "" {
				cfg.Server = server
			}
			app = NewApp(cfg, out, errOut, in)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(in)

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default <config dir>/mangrove/config.yaml)")
	root.PersistentFlags().StringVar(&server, "server", "", "API base URL, overrides the config file")

	current := func() *App { return app }

	report := &cobra.Command{Use: "report", Short: "Submit and review incident reports"}
	report.AddCommand(
		submitCmd(current),
		listCmd(current),
		showCmd(current),
		statusCmd(current),
	)

	root.AddCommand(
		registerCmd(current),
		loginCmd(current),
		logoutCmd(current),
		whoamiCmd(current),
		report,
		leaderboardCmd(current),
	)
	return root
}

func registerCmd(app func() *App) *cobra.Command {
	var req auth.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (log in afterwards)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.PublicOnly()); !ok {
				return err
			}

			if req.Password == "" {
				req.Password = a.prompt("Password: ")
				req.ConfirmPassword = a.prompt("Confirm password: ")
			}
			req.Role = auth.Role(role)

			result, err := a.session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s as %s. Run `mangrove login` to sign in.\n", result.Identity.Email, result.Identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "Password again")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&role, "role", "user", "Account role: user or admin")
	return cmd
}

func loginCmd(app func() *App) *cobra.Command {
	var creds session.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.PublicOnly()); !ok {
				return err
			}

			if creds.Email == "" {
				creds.Email = a.prompt("Email: ")
			}
			if creds.Password == "" {
				creds.Password = a.prompt("Password: ")
			}

			s, err := a.session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s).\n", s.Identity.Email, s.Identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func logoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			a.session.Logout()
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func whoamiCmd(app func() *App) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.AnyAuthenticated()); !ok {
				return err
			}

			s := a.session.CurrentSession()
			fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nid:   %s\n", s.Identity.DisplayName, s.Identity.Email, s.Identity.Role, s.Identity.ID)
			if !stats {
				return nil
			}

			return a.authed(func(token string) error {
				e, err := a.api.MyStats(cmd.Context(), token)
				if err != nil {
					return err
				}
				rank := "unranked"
				if e.Rank > 0 {
					rank = fmt.Sprintf("#%d", e.Rank)
				}
				fmt.Fprintf(a.out, "rank: %s\npoints: %d (%s, %.0f%% to next level)\nreports: %d (%d resolved)\n",
					rank, e.Points, e.Level, e.Progress*100, e.ReportCount, e.ResolvedCount)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Also show contribution stats")
	return cmd
}

func submitCmd(app func() *App) *cobra.Command {
	var (
		req      reports.SubmitRequest
		severity string
		lat, lng float64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a geotagged incident report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.AnyAuthenticated()); !ok {
				return err
			}

			req.Severity = reports.Severity(severity)
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				req.Location = &reports.Location{Lat: lat, Lng: lng}
			}
			if err := reports.ValidateSubmit(&req); err != nil {
				return err
			}

			return a.authed(func(token string) error {
				r, err := a.api.SubmitReport(cmd.Context(), token, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Report %s submitted (%s, %s).\n", r.ID, r.Severity, r.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "What happened")
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Short title (derived from the description when omitted)")
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "minor, moderate or severe (default moderate)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	cmd.Flags().BoolVar(&req.HasPhoto, "photo", false, "A photo was taken")
	return cmd
}

func listCmd(app func() *App) *cobra.Command {
	var (
		status, severity string
		mine             bool
		page, limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.AnyAuthenticated()); !ok {
				return err
			}

			q := reportQuery(status, severity, mine, page, limit)
			return a.authed(func(token string) error {
				res, err := a.api.ListReports(cmd.Context(), token, q)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tSEVERITY\tSUBMITTED\tTITLE")
				for _, r := range res.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Severity, r.SubmittedAt.Format("2006-01-02 15:04"), r.Title)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "page %d, %d of %d reports\n", res.Page, len(res.Items), res.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&severity, "severity", "", "Filter by severity")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only my reports")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Reports per page")
	return cmd
}

func showCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one report and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(access.AnyAuthenticated()); !ok {
				return err
			}

			return a.authed(func(token string) error {
				r, err := a.api.GetReport(cmd.Context(), token, args[0])
				if err != nil {
					return err
				}
				printReport(a.out, r)
				return nil
			})
		},
	}
}

func statusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a report to a new status (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if ok, err := a.gate(reports.TransitionRequirement); !ok {
				return err
			}

			target := reports.Status(strings.ToLower(args[1]))
			if err := reports.ValidateTarget(target); err != nil {
				return err
			}

			return a.authed(func(token string) error {
				r, err := a.api.TransitionReport(cmd.Context(), token, args[0], target)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Report %s is now %s.\n", r.ID, r.Status)
				return nil
			})
		},
	}
}

func leaderboardCmd(app func() *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top contributors",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			entries, err := a.api.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printLeaderboard(a.out, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of contributors")
	return cmd
}

func reportQuery(status, severity string, mine bool, page, limit int) client.ReportQuery {
	return client.ReportQuery{
		Status:   reports.Status(strings.ToLower(status)),
		Severity: reports.Severity(strings.ToLower(severity)),
		Mine:     mine,
		Page:     page,
		Limit:    limit,
	}
}

func printReport(w io.Writer, r *reports.Report) {
	fmt.Fprintf(w, "%s  %s\n", r.ID, r.Title)
	fmt.Fprintf(w, "status:    %s\nseverity:  %s\nlocation:  %.5f, %.5f\nsubmitted: %s by %s\n",
		r.Status, r.Severity, r.Location.Lat, r.Location.Lng, r.SubmittedAt.Format("2006-01-02 15:04 MST"), r.AuthorID)
	if r.HasPhoto {
		fmt.Fprintln(w, "photo:     yes")
	}
	fmt.Fprintf(w, "\n%s\n", r.Description)
	if len(r.History) == 0 {
		return
	}
	fmt.Fprintln(w, "\nhistory:")
	for _, h := range r.History {
		fmt.Fprintf(w, "  %s  %s -> %s by %s\n", h.At.Format("2006-01-02 15:04"), h.From, h.To, h.ActorID)
	}
}

func printLeaderboard(out io.Writer, entries []leaderboard.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No contributions yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tLEVEL\tPOINTS\tREPORTS\tRESOLVED")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", e.Rank, e.DisplayName, e.Level, e.Points, e.ReportCount, e.ResolvedCount)
	}
	_ = w.Flush()
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}
