package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/milestone-tracker/internal/tracker"
)

// errNotDispatched makes the check command exit non-zero when nothing was celebrated
var errNotDispatched = errors.New("no celebration dispatched")

const waitPollInterval = 100 * time.Millisecond

// checkResult is printed to stdout by the check command
type checkResult struct {
	Identity   string           `json:"identity"`
	Dispatched bool             `json:"dispatched"`
	Tracker    tracker.Snapshot `json:"tracker"`
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check IDENTITY",
		Short: "Check an identity once and dispatch its celebration if due",
		Long: `Check the first-investment milestone for IDENTITY.

Without --wait a single out-of-band check is made. With --wait a bounded polling
session runs until the celebration is dispatched or the attempt budget is used up.
The command exits 0 only when a celebration was dispatched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runCheck(ctx, v, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().Bool("wait", false, "Poll until detected or the attempt budget is exhausted")

	return cmd
}

func runCheck(ctx context.Context, v *viper.Viper, identity string, out io.Writer) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.close(context.Background())

	comps.tracker.ReconcilePending(ctx)

	var dispatched bool
	if v.GetBool("wait") {
		dispatched = waitForCelebration(ctx, comps.tracker, identity)
	} else {
		dispatched = comps.tracker.CheckNow(ctx, identity)
	}

	result := checkResult{Identity: identity, Dispatched: dispatched, Tracker: comps.tracker.Snapshot()}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if !dispatched {
		return errNotDispatched
	}
	return nil
}

// waitForCelebration runs one polling session and reports whether it ended in a celebration
func waitForCelebration(ctx context.Context, t *tracker.Tracker, identity string) bool {
	if !t.StartMonitoring(ctx, identity) {
		return false
	}
	defer t.StopMonitoring()

	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		switch t.Snapshot().State {
		case tracker.StateCompleted:
			return true
		case tracker.StateStopped, tracker.StateIdle:
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
