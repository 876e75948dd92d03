package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwkeyring/internal/util/command"
)

const (
	verboseFlag string = "verbose"
	urlFlag     string = "url"

	probeTimeout = 5 * time.Second
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newProbe("liveness", "/-/healthy", "Checks whether a running bridge is alive"),
		newProbe("readiness", "/-/ready", "Checks whether a running bridge is ready to serve"),
	)
}

func newProbe(use string, path string, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Exits non-zero when the probe fails. The bridge address is taken from the config
unless --url is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			base, _ := cmd.Flags().GetString(urlFlag)

			if base == "" {
				cfg, err := command.LoadConfig()
				if err != nil {
					return err
				}
				base = "http://" + cfg.Bridge.ListenAddress
			}

			return runProbe(cmd, strings.TrimSuffix(base, "/")+path, verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "print the probe response")
	cmd.Flags().String(urlFlag, "", "base URL of the bridge")

	return cmd
}

func runProbe(cmd *cobra.Command, url string, verbose bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "probe %s failed", url)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read probe response")
	}

	if verbose {
		cmd.Println(strings.TrimSpace(string(body)))
	}

	if res.StatusCode != http.StatusOK {
		log.Warn().Str("url", url).Int("status", res.StatusCode).Msg("Probe failed")
		return errors.Errorf("probe %s returned status %d", url, res.StatusCode)
	}

	return nil
}
