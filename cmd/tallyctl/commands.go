package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tallybridge/internal/app"
	"tallybridge/internal/audit"
	"tallybridge/internal/onboarding"
	"tallybridge/internal/platform/config"
	"tallybridge/internal/platform/logger"
	"tallybridge/internal/submission"
)

var errOnboardingFailed = errors.New("onboarding failed")

func mapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map a saved submission and print both records without calling any remote API",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			env, err := readEnvelope(path)
			if err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			mapper, err := app.NewMapper(cfg, cliLogger(cmd, cfg))
			if err != nil {
				return err
			}
			org, person, err := mapper.Map(env.Data.Fields)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{
				"organization": org.Snapshot(),
				"person":       person.Snapshot(),
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to a saved webhook body")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type onboardOutput struct {
	Success        bool     `json:"success"`
	AccountID      string   `json:"accountId,omitempty"`
	Message        string   `json:"message,omitempty"`
	Error          string   `json:"error,omitempty"`
	FailedStep     string   `json:"failed_step,omitempty"`
	ErrorKind      string   `json:"error_kind,omitempty"`
	Detail         string   `json:"detail,omitempty"`
	CompletedSteps []string `json:"completed_steps"`
}

func onboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Run the full onboarding pipeline for a saved submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			env, err := readEnvelope(path)
			if err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := cliLogger(cmd, cfg)
			mapper, err := app.NewMapper(cfg, log)
			if err != nil {
				return err
			}
			svc, err := app.NewOnboarding(cfg, mapper, app.Deps{Logger: log, Events: audit.NewLogSink(log)})
			if err != nil {
				return err
			}

			res, err := svc.Submit(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd, toOnboardOutput(res)); err != nil {
				return err
			}
			if !res.Success {
				return errOnboardingFailed
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to a saved webhook body")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Forward a saved submission to the secondary registration service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			accountID, _ := cmd.Flags().GetString("account")
			isTest, _ := cmd.Flags().GetBool("test")

			env, err := readEnvelope(path)
			if err != nil {
				return err
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireBubble(isTest); err != nil {
				return err
			}
			log := cliLogger(cmd, cfg)
			mapper, err := app.NewMapper(cfg, log)
			if err != nil {
				return err
			}
			svc := app.NewRegistration(cfg, mapper, app.Deps{Logger: log, Events: audit.NewLogSink(log)})

			res, err := svc.Register(cmd.Context(), env, accountID, isTest)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd, res); err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("secondary registration answered %d %s", res.Status, res.StatusText)
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to a saved webhook body")
	cmd.Flags().StringP("account", "a", "", "Payments account id to register")
	cmd.Flags().Bool("test", false, "Target the test version of the secondary service")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func readEnvelope(path string) (*submission.Envelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read submission: %w", err)
	}
	env, err := submission.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if env.Data.Fields == nil {
		return nil, fmt.Errorf("submission %s has no data.fields", path)
	}
	return env, nil
}

// cliLogger writes to stderr so stdout carries only the command output.
func cliLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Server.LogLevel, "text")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toOnboardOutput(res onboarding.Result) onboardOutput {
	out := onboardOutput{
		Success:        res.Success,
		AccountID:      res.AccountID,
		Message:        res.Message,
		Error:          res.Error,
		FailedStep:     string(res.FailedStep),
		ErrorKind:      string(res.Kind),
		CompletedSteps: make([]string, 0, len(res.CompletedSteps)),
	}
	if res.Cause != nil {
		out.Detail = res.Cause.Error()
	}
	for _, s := range res.CompletedSteps {
		out.CompletedSteps = append(out.CompletedSteps, string(s))
	}
	return out
}
