package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

// console reads operator commands from stdin while the client runs.
type console struct {
	session ports.Session
	names   ports.NameTable
	status  func() domain.BridgeStatus
	exit    func()
	out     io.Writer
	logger  *logging.Logger
}

// run consumes lines until EOF or /exit. Reaching EOF leaves the client running.
func (c *console) run(ctx context.Context, scanner *bufio.Scanner) {
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if stop := c.handle(ctx, scanner.Text()); stop {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Debug("console input closed", "error", err)
	}
}

// handle executes one input line and reports whether the console should stop.
func (c *console) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/exit":
		c.exit()
		return true
	case "/nes":
		status := c.status()
		c.printf("NES Status: %s\n", status.Text)
	case "/received":
		c.printReceived()
	case "/missing":
		c.printMissing()
	default:
		if err := c.session.SendMessages(ctx, domain.NewSay(line)); err != nil {
			c.logger.Warn("send chat message", "error", err)
		}
	}

	return false
}

func (c *console) printReceived() {
	items := c.session.ItemsReceived()
	c.printf("Received items (%d):\n", len(items))
	for _, item := range items {
		c.printf("  %s from %s\n", c.names.ItemName(item.Item), c.names.LocationName(item.Location))
	}
}

func (c *console) printMissing() {
	missing := slices.Clone(c.session.MissingLocations())
	slices.Sort(missing)
	c.printf("Missing locations (%d):\n", len(missing))
	for _, id := range missing {
		c.printf("  %s\n", c.names.LocationName(int64(id)))
	}
}

func (c *console) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.logger.Debug("write console output", "error", err)
	}
}
