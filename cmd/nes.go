package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	statusadapter "github.com/bnema/ff1c/internal/adapters/render/status"
	"github.com/bnema/ff1c/internal/adapters/watch"
	"github.com/bnema/ff1c/internal/domain"
)

type nesStatusOutput struct {
	State     domain.ConnectionState `json:"state"`
	Text      string                 `json:"text"`
	Tentative bool                   `json:"tentative"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
	Stale     bool                   `json:"stale"`
}

func newNESCmd(app *app) *cobra.Command {
	var (
		asJSON  bool
		wait    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "nes",
		Short: "Show the emulator bridge connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !wait {
				status, err := app.statusRepo.LoadStatus(cmd.Context())
				if err != nil {
					return statusLoadError(app, err)
				}
				return writeNESOutput(cmd, app, status, asJSON)
			}

			status, err := waitForBridge(cmd, app, timeout, asJSON)
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if status.State == "" {
				return fmt.Errorf("no bridge status appeared at %s within %s", app.statusRepo.Path(), timeout)
			}
			if werr := writeNESOutput(cmd, app, status, asJSON); werr != nil {
				return werr
			}
			if err != nil {
				return fmt.Errorf("bridge not connected after %s", timeout)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the bridge is connected")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long --wait waits")

	return cmd
}

func statusLoadError(app *app, err error) error {
	if errors.Is(err, domain.ErrStatusNotFound) {
		return fmt.Errorf("no bridge status recorded at %s, is `ff1c run` running? %w", app.statusRepo.Path(), err)
	}
	return fmt.Errorf("load bridge status: %w", err)
}

func waitForBridge(cmd *cobra.Command, app *app, timeout time.Duration, quiet bool) (domain.BridgeStatus, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	watcher := watch.NewStatusWatcher(app.statusRepo.Path(), app.statusRepo, nil)
	connected := func(s domain.BridgeStatus) bool {
		return s.State == domain.ConnectionConnected
	}

	if quiet {
		return watcher.WaitFor(ctx, connected, nil)
	}

	var (
		mu     sync.Mutex
		result domain.BridgeStatus
	)
	err := runBridgeWaitSpinner(ctx, cmd.ErrOrStderr(), func(ctx context.Context, progress func(domain.BridgeStatus)) error {
		status, err := watcher.WaitFor(ctx, connected, progress)
		mu.Lock()
		result = status
		mu.Unlock()
		return err
	})

	mu.Lock()
	defer mu.Unlock()
	return result, err
}

func writeNESOutput(cmd *cobra.Command, app *app, status domain.BridgeStatus, asJSON bool) error {
	now := app.now()
	staleAfter := app.cfg.Status.StaleAfter

	if asJSON {
		out := nesStatusOutput{
			State:     status.State,
			Text:      status.Text,
			Tentative: status.Tentative,
			Stale:     status.IsStale(now, staleAfter),
		}
		if !status.UpdatedAt.IsZero() {
			updated := status.UpdatedAt
			out.UpdatedAt = &updated
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{
		Now:        now,
		StaleAfter: staleAfter,
		Source:     app.statusRepo.Path(),
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
