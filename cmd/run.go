package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/ff1c/internal/domain"
)

func newRunCmd(app *app) *cobra.Command {
	var settings runSettings

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect the emulator bridge to a multiworld server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if settings.address == "" {
				settings.address = app.cfg.Server.Address
			}
			if settings.password == "" {
				settings.password = app.cfg.Server.Password
			}
			if settings.name == "" {
				settings.name = app.cfg.Server.Name
			}
			if strings.TrimSpace(settings.address) == "" {
				return fmt.Errorf("%w: pass --connect or set server.address", domain.ErrServerAddressUnset)
			}

			logger, err := app.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logger.Close()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			if settings.name == "" {
				name, err := promptSlotName(cmd, scanner)
				if err != nil {
					return err
				}
				settings.name = name
			}

			r, err := app.wireRunner(settings, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := r.session.Run(gctx); err != nil {
					logger.Error("multiworld session ended, bridge sync continues until /exit", "error", err)
				}
				return nil
			})
			g.Go(func() error {
				return r.loop.Run(gctx)
			})

			con := &console{
				session: r.session,
				names:   r.names,
				status:  r.loop.Status,
				exit:    cancel,
				out:     cmd.OutOrStdout(),
				logger:  logger.WithComponent("console"),
			}
			go con.run(gctx, scanner)

			err = g.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.address, "connect", "", "multiworld server address (host:port)")
	cmd.Flags().StringVar(&settings.password, "password", "", "multiworld server password")
	cmd.Flags().StringVar(&settings.name, "name", "", "slot name to connect as")

	return cmd
}

func promptSlotName(cmd *cobra.Command, scanner *bufio.Scanner) (string, error) {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), "Enter slot name: "); err != nil {
		return "", err
	}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read slot name: %w", err)
		}
		return "", errors.New("read slot name: no input")
	}

	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		return "", errors.New("slot name is required")
	}
	return name, nil
}
