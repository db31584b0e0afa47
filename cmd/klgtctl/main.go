// Command klgtctl is the operator CLI for the KLGT member portal. It works
// directly on the configured slot storage, so it does not pass through the
// admin gate.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/config"
	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/storage"
	"github.com/kalougata/klgt-portal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(openPortal).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openPortal builds the portal from config. Logs go to the rolling file only
// so they do not mix with command output.
func openPortal() (*services.Portal, error) {
	cfg := config.Load()
	logger, err := utils.NewRollingFileLogger(cfg.LogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		logger = zap.NewNop()
	}
	slots, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}
	return services.NewPortal(slots, services.Options{
		CommunityTag:  cfg.CommunityTag,
		AdminPasscode: cfg.AdminPasscode,
		Logger:        logger.Named("klgtctl"),
	}), nil
}

func rootCmd(open func() (*services.Portal, error)) *cobra.Command {
	var portal *services.Portal

	cmd := &cobra.Command{
		Use:           "klgtctl",
		Short:         "Operate the KLGT member portal data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			p, err := open()
			if err != nil {
				return fmt.Errorf("open portal: %w", err)
			}
			portal = p
			return nil
		},
	}
	get := func() *services.Portal { return portal }

	cmd.AddCommand(
		leaderboardCmd(get),
		membersCmd(get),
		awardCmd(get),
		deductCmd(get),
		scanCmd(get),
		resetCheckCmd(get),
		positionCmd(get),
	)
	return cmd
}

func leaderboardCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print members ranked by points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := portal().Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tID\tNAME\tPOINTS")
			for _, s := range board {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.Rank, s.Member.ID, s.Member.Name, s.Member.Points)
			}
			return tw.Flush()
		},
	}
}

func membersCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "members [query]",
		Short: "List members, optionally filtered by name or id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			members, err := portal().Registry.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			printMembers(cmd.OutOrStdout(), members)
			return nil
		},
	}
}

func awardCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "award <member-id> <preset>",
		Short: "Award a preset activity (minsoc, futsal, bola)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := portal().Points.AwardPreset(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printActivity(cmd.OutOrStdout(), act)
			return nil
		},
	}
}

func deductCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "deduct <member-id> <amount> <reason...>",
		Short: "Deduct points with a mandatory reason",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := portal().Points.Deduct(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			printActivity(cmd.OutOrStdout(), act)
			return nil
		},
	}
}

func scanCmd(portal func() *services.Portal) *cobra.Command {
	var (
		preset string
		loop   bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read badge ids from stdin (one per line) and award a preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := services.LookupPreset(preset); !ok {
				return fmt.Errorf("unknown preset %q", preset)
			}
			out := cmd.OutOrStdout()
			p := portal()
			scanner := services.NewLineScanner(cmd.InOrStdin())
			onInvalid := func(text string) {
				fmt.Fprintf(out, "ID Anggota tidak valid! (%s)\n", text)
			}
			for {
				m, err := p.Scan.AwaitScan(cmd.Context(), scanner, onInvalid)
				if errors.Is(err, services.ErrScannerClosed) {
					return nil
				}
				if err != nil {
					return err
				}
				act, err := p.Scan.AwardSelected(cmd.Context(), preset)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: ", m.Name)
				printActivity(out, act)
				if !loop {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "bola", "Preset to award for each scan")
	cmd.Flags().BoolVar(&loop, "loop", false, "Keep scanning until input ends")
	return cmd
}

func positionCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "position <member-id> <position>",
		Short: "Set a member's role tag (Goalkeeper, Defender, Forward, \"Anggota Aktif\")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := portal().Registry.SetPosition(cmd.Context(), args[0], models.Position(args[1]))
			if err != nil {
				return err
			}
			printMembers(cmd.OutOrStdout(), []models.Member{*m})
			return nil
		},
	}
}

func resetCheckCmd(portal func() *services.Portal) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-check",
		Short: "Load the dataset, applying the annual reset if due, and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := portal().Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lastResetYear=%d members=%d activities=%d\n",
				ds.LastResetYear, len(ds.Members), len(ds.Activities))
			return nil
		},
	}
}

func printMembers(w io.Writer, members []models.Member) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tPOINTS")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.Name, m.Position, m.Points)
	}
	_ = tw.Flush()
}

func printActivity(w io.Writer, a *models.PointActivity) {
	fmt.Fprintf(w, "%+d %s (%s)\n", a.Points, a.Reason, a.MemberID)
}
