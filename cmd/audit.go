// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/device-audit/internal/config"
	"github.com/canonical/device-audit/internal/db"
	"github.com/canonical/device-audit/internal/directory"
	"github.com/canonical/device-audit/internal/loader"
	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring/prometheus"
	"github.com/canonical/device-audit/internal/report"
	"github.com/canonical/device-audit/internal/salesforce"
	"github.com/canonical/device-audit/internal/storage"
	"github.com/canonical/device-audit/internal/tracing"
	"github.com/canonical/device-audit/internal/types"
)

const serviceName = "device-audit"

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report enabled users that have no registered device",
	Long: `Read identities from a CSV or XLSX file (or a Salesforce query), look each
of them up in the directory and write the enabled accounts without any
registered device to a CSV report.

Example:
  device-audit audit --input users.csv --column UserPrincipalName --output ActiveUsersWithNoDevices.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAudit(cmd); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Audit failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	registerAuditFlags(auditCmd)
	rootCmd.AddCommand(auditCmd)
}

func registerAuditFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Path of the CSV or XLSX file listing the identities (INPUT_PATH)")
	cmd.Flags().String("column", "", "Column holding the user identifier (INPUT_COLUMN)")
	cmd.Flags().String("output", "", "Path of the CSV report (OUTPUT_PATH)")
	cmd.Flags().String("source", "", "Identity source, file or salesforce (INPUT_SOURCE)")
	cmd.Flags().String("soql", "", "SOQL query used by the salesforce source (SALESFORCE_QUERY)")
	cmd.Flags().String("tenant", "", "Directory tenant (GRAPH_TENANT_ID)")
	cmd.Flags().String("client-id", "", "Application client id (GRAPH_CLIENT_ID)")
	cmd.Flags().String("auth-mode", "", "Authentication flow, device or client_credentials (GRAPH_AUTH_MODE)")
	cmd.Flags().Bool("device-errors-as-none", false, "Count users whose device lookup failed as users without device (DEVICE_ERRORS_AS_NONE)")
	cmd.Flags().String("dsn", "", "PostgreSQL DSN to record the run history (DSN)")
	cmd.Flags().String("metrics-textfile", "", "Write the run metrics to this file in text exposition format (METRICS_TEXTFILE)")
}

// applyFlags overrides specs with the flags set on the command line.
func applyFlags(cmd *cobra.Command, specs *config.EnvSpec) {
	strFlags := map[string]*string{
		"input":            &specs.InputPath,
		"column":           &specs.InputColumn,
		"output":           &specs.OutputPath,
		"source":           &specs.InputSource,
		"soql":             &specs.SalesforceQuery,
		"tenant":           &specs.GraphTenantID,
		"client-id":        &specs.GraphClientID,
		"auth-mode":        &specs.GraphAuthMode,
		"dsn":              &specs.DSN,
		"metrics-textfile": &specs.MetricsTextfile,
	}

	for name, target := range strFlags {
		if cmd.Flags().Changed(name) {
			*target, _ = cmd.Flags().GetString(name)
		}
	}

	if cmd.Flags().Changed("device-errors-as-none") {
		specs.DeviceErrorsAsNone, _ = cmd.Flags().GetBool("device-errors-as-none")
	}

	// the default query only returns the team member email
	if types.InputSource(specs.InputSource) == types.InputSourceSalesforce && specs.SalesforceQuery == "" && !cmd.Flags().Changed("column") {
		if _, ok := os.LookupEnv("INPUT_COLUMN"); !ok {
			specs.InputColumn = salesforce.DefaultTeamMemberColumn
		}
	}
}

func runAudit(cmd *cobra.Command) error {
	specs, err := config.LoadEnvSpec()
	if err != nil {
		return err
	}
	applyFlags(cmd, specs)

	if err := specs.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(specs.LogLevel, specs.LogFormat)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Errorf("failed to flush traces: %v", err)
		}
	}()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := buildLoader(specs, tracer, logger)
	if err != nil {
		return err
	}

	var store storage.StorageInterface
	if specs.DSN != "" {
		dbClient, err := db.NewDBClient(
			db.Config{
				DSN:             specs.DSN,
				MaxConns:        specs.DBMaxConns,
				MinConns:        specs.DBMinConns,
				MaxConnLifetime: specs.DBMaxConnLifetime,
				MaxConnIdleTime: specs.DBMaxConnIdleTime,
				TracingEnabled:  specs.TracingEnabled,
			},
			tracer, monitor, logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create database client: %v", err)
		}
		defer dbClient.Close()

		// the pool connects lazily, check it before spending a whole audit
		if err := dbClient.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", db.ErrUnreachable, err)
		}

		store = storage.NewStorage(dbClient, tracer, monitor, logger)
	}

	p := &pipeline{
		specs:  specs,
		loader: src,
		connect: func(ctx context.Context) (directory.ClientInterface, string, error) {
			c, err := directory.Connect(ctx, directoryConfig(specs, cmd), tracer, monitor, logger)
			if err != nil {
				return nil, "", err
			}
			return c, c.Account, nil
		},
		writer: report.NewWriter(tracer, logger),
		store:  store,

		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}

	_, runErr := p.run(ctx)

	if specs.MetricsTextfile != "" {
		if err := monitor.WriteToTextfile(specs.MetricsTextfile); err != nil {
			logger.Errorf("failed to write metrics to %s: %v", specs.MetricsTextfile, err)
		}
	}

	return runErr
}

func directoryConfig(specs *config.EnvSpec, cmd *cobra.Command) *directory.Config {
	return &directory.Config{
		TenantID:     specs.GraphTenantID,
		ClientID:     specs.GraphClientID,
		ClientSecret: specs.GraphClientSecret,
		AuthMode:     specs.GraphAuthMode,
		Authority:    specs.GraphAuthority,
		BaseURL:      specs.GraphBaseURL,
		Scopes:       specs.GraphScopes,
		Timeout:      specs.GraphRequestTimeout,
		Prompt:       cmd.ErrOrStderr(),
	}
}

func buildLoader(specs *config.EnvSpec, tracer tracing.TracingInterface, logger logging.LoggerInterface) (loader.LoaderInterface, error) {
	switch types.InputSource(specs.InputSource) {
	case types.InputSourceFile:
		return loader.NewFileLoader(specs.InputPath, tracer, logger), nil
	case types.InputSourceSalesforce:
		sf, err := salesforce.NewClient(specs.SalesforceDomain, specs.SalesforceConsumerKey, specs.SalesforceConsumerSecret)
		if err != nil {
			return nil, err
		}
		return loader.NewSalesforceLoader(sf, specs.SalesforceQuery, tracer, logger), nil
	}

	return nil, fmt.Errorf("%w: %q", types.ErrInvalidInputSource, specs.InputSource)
}
