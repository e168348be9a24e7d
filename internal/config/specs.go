// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// EnvSpec is the environment configuration of an audit run, flags of the
// audit command override it.
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"false"`

	LogLevel  string `envconfig:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"log_format" default:"console" validate:"oneof=console json"`

	MetricsTextfile string `envconfig:"metrics_textfile"`

	InputPath   string `envconfig:"input_path" default:"users.csv" validate:"required_if=InputSource file"`
	InputColumn string `envconfig:"input_column" default:"UserPrincipalName" validate:"required"`
	InputSource string `envconfig:"input_source" default:"file" validate:"oneof=file salesforce"`
	OutputPath  string `envconfig:"output_path" default:"ActiveUsersWithNoDevices.csv" validate:"required"`

	GraphTenantID       string        `envconfig:"graph_tenant_id" default:"organizations" validate:"required"`
	GraphClientID       string        `envconfig:"graph_client_id" validate:"required"`
	GraphClientSecret   string        `envconfig:"graph_client_secret" validate:"required_if=GraphAuthMode client_credentials"`
	GraphAuthMode       string        `envconfig:"graph_auth_mode" default:"device" validate:"oneof=device client_credentials"`
	GraphAuthority      string        `envconfig:"graph_authority" default:"https://login.microsoftonline.com" validate:"url"`
	GraphBaseURL        string        `envconfig:"graph_base_url" default:"https://graph.microsoft.com/v1.0" validate:"url"`
	GraphScopes         []string      `envconfig:"graph_scopes" default:"User.Read.All,Device.Read.All" validate:"min=1,dive,required"`
	GraphRequestTimeout time.Duration `envconfig:"graph_request_timeout" default:"30s" validate:"gt=0"`

	DeviceErrorsAsNone bool `envconfig:"device_errors_as_none" default:"false"`

	SalesforceDomain         string `envconfig:"salesforce_domain" validate:"required_if=InputSource salesforce"`
	SalesforceConsumerKey    string `envconfig:"salesforce_consumer_key" validate:"required_if=InputSource salesforce"`
	SalesforceConsumerSecret string `envconfig:"salesforce_consumer_secret" validate:"required_if=InputSource salesforce"`
	SalesforceQuery          string `envconfig:"salesforce_query"`

	DSN               string        `envconfig:"DSN" default:""`
	DBMaxConns        int32         `envconfig:"db_max_conns" default:"4"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"0"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
}

// Validate checks the combination of settings, the error names every
// offending setting by its environment variable.
func (s *EnvSpec) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := envName(fe.StructField())

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", name, fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive", name)
	case "min":
		return fmt.Sprintf("%s must not be empty", name)
	}

	return fmt.Sprintf("%s failed on %s", name, fe.Tag())
}

// envName maps a field back to the variable envconfig reads it from.
func envName(field string) string {
	idx := strings.Index(field, "[")
	if idx >= 0 {
		field = field[:idx]
	}

	f, ok := reflect.TypeOf(EnvSpec{}).FieldByName(field)
	if !ok {
		return field
	}

	return strings.ToUpper(f.Tag.Get("envconfig"))
}

// LoadEnvSpec reads the configuration from the environment.
func LoadEnvSpec() (*EnvSpec, error) {
	specs := new(EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return specs, nil
}
