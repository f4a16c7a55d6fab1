package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"adaptive-truth/internal/clients"
	"adaptive-truth/internal/config"
	"adaptive-truth/internal/controller"
	"adaptive-truth/internal/models"
	"adaptive-truth/internal/presentation"
	"adaptive-truth/internal/submission"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ErrVerificationFailed is returned when the lifecycle ends in Failed
var ErrVerificationFailed = errors.New("verification failed")

type verifyOptions struct {
	endpoint string
	timeout  time.Duration
	expand   bool
	json     bool
}

func newVerifyCommand() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <claim...>",
		Short: "Verify a single claim and print the result",
		Long: `Verify sends one claim to the verification service, waits for the
verdict and prints it. All arguments are joined into a single claim.

Example:
  claimcheck verify The Queen is alive
  claimcheck verify "Water boils at 100C at sea level" --expand
  claimcheck verify "The Eiffel Tower is in Rome" --endpoint http://localhost:8000 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "verification service base URL (default: VERIFY_SERVICE_URL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (default: VERIFY_TIMEOUT_SECONDS)")
	cmd.Flags().BoolVar(&opts.expand, "expand", false, "always print evidence details")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the rendered result as JSON")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *verifyOptions, text string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.endpoint != "" {
		cfg.VerifyServiceURL = strings.TrimRight(opts.endpoint, "/")
	}
	if opts.timeout > 0 {
		cfg.VerifyTimeout = opts.timeout
	}
	if opts.expand {
		cfg.EvidenceDisplayMode = config.DisplayModeExpanded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := presentation.ParseDisplayMode(cfg.EvidenceDisplayMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = clients.WithCorrelationID(ctx, uuid.New().String())

	ctrl := controller.New(clients.NewVerificationClient(cfg))
	defer ctrl.Close()

	var done <-chan controller.State
	form := submission.NewForm(func(claim models.Claim) error {
		var submitErr error
		done, submitErr = ctrl.Submit(ctx, claim)
		return submitErr
	}, ctrl.IsLoading)

	forwarded, err := form.SubmitText(text)
	if err != nil {
		return err
	}
	if !forwarded {
		return models.ErrEmptyClaim
	}

	var state controller.State
	select {
	case settled, ok := <-done:
		if !ok {
			return controller.ErrClosed
		}
		state = settled
	case <-ctx.Done():
		return ctx.Err()
	}

	if state.Phase == controller.PhaseFailed {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", state.Error)
		return ErrVerificationFailed
	}

	view := presentation.NewPresenter(mode).Render(state.Result)
	if opts.json {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}
	return presentation.WriteText(cmd.OutOrStdout(), view)
}
