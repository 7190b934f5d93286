package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit"
)

// probe dispara uma rajada contra a API e mostra como os limiters responderam.
// Serve para validar à mão os limites configurados (ex: 10 por minuto por IP).
var (
	probeURL          string
	probeCount        int
	probeForwardedFor string
	probeInterval     time.Duration
	probeTimeout      time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Send a burst of requests and report status codes and quota headers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if probeCount <= 0 {
			return fmt.Errorf("--count must be > 0")
		}
		client := &http.Client{Timeout: probeTimeout}
		res, err := runProbe(cmd.Context(), client, probeURL, probeCount, probeForwardedFor, probeInterval, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeURL, "url", "http://localhost:3000/api/notes", "endpoint to hit")
	probeCmd.Flags().IntVarP(&probeCount, "count", "n", 11, "number of requests")
	probeCmd.Flags().StringVar(&probeForwardedFor, "forwarded-for", "", "X-Forwarded-For value (only honored with TRUST_XFF=true)")
	probeCmd.Flags().DurationVar(&probeInterval, "interval", 0, "pause between requests")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Second, "per-request timeout")
}

type probeResult struct {
	ByStatus map[int]int
}

func (p probeResult) Summary() string {
	codes := make([]int, 0, len(p.ByStatus))
	for c := range p.ByStatus {
		codes = append(codes, c)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, fmt.Sprintf("%d=%d", c, p.ByStatus[c]))
	}
	return "summary: " + strings.Join(parts, " ")
}

func runProbe(ctx context.Context, client *http.Client, url string, n int, xff string, interval time.Duration, out io.Writer) (probeResult, error) {
	res := probeResult{ByStatus: make(map[int]int)}
	for i := 1; i <= n; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return res, err
		}
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}

		resp, err := client.Do(req)
		if err != nil {
			return res, fmt.Errorf("request %d: %w", i, err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		res.ByStatus[resp.StatusCode]++
		fmt.Fprintf(out, "#%d %d remaining=%s reset=%s retry-after=%s\n", i, resp.StatusCode,
			orDash(resp.Header.Get(ratelimit.HeaderRemaining)),
			orDash(resp.Header.Get(ratelimit.HeaderReset)),
			orDash(resp.Header.Get(ratelimit.HeaderRetryAfter)))

		if interval > 0 && i < n {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return res, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
