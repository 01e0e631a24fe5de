package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
)

// Console prints progress the way an operator watches it in a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Launched(n int, h *deployment.Handle) {
	c.printf("executing deployment %d\n", n)
	c.printf("{\"id\":%q}\n", h.ID)
}

func (c *Console) Status(_ *deployment.Handle, raw json.RawMessage) {
	c.printf("%s\n", raw)
}

func (c *Console) Logs(_ *deployment.Handle, lines []string) {
	c.printf("%s\n", strings.Join(lines, ""))
}

func (c *Console) Round(r RoundReport) {
	c.printf("%s\n", r)
}

func (c *Console) Final(_ context.Context, handles []*deployment.Handle) error {
	data, err := json.MarshalIndent(handles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployments: %w", err)
	}
	c.printf("%s\n", data)
	return nil
}
