// Package secret resolves the application's client secret, either directly
// from configuration or from AWS Secrets Manager, and reads other secret
// material such as encryption keysets.
package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/rs/zerolog/log"
)

// SecretsManagerClient defines the AWS API surface required to read a secret.
type SecretsManagerClient interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ClientSecret returns the configured client secret. When only a secret ARN is
// configured, the secret is read from AWS Secrets Manager using the default
// credential chain.
func ClientSecret(ctx context.Context, cfg config.PartnerCenterConfig) (string, error) {
	if cfg.ClientSecret != "" {
		return cfg.ClientSecret, nil
	}

	if cfg.ClientSecretARN == "" {
		return "", errors.New("no client secret configuration specified")
	}

	return Value(ctx, cfg.ClientSecretARN)
}

// Value reads the secret identified by id (a name or ARN) from AWS Secrets
// Manager using the default credential chain.
func Value(ctx context.Context, id string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return FromSecretsManager(ctx, secretsmanager.NewFromConfig(awsCfg), id)
}

// FromSecretsManager reads the string value of the secret identified by arn.
// Binary secrets are not supported.
func FromSecretsManager(ctx context.Context, client SecretsManagerClient, arn string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", arn, err)
	}

	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s has no string value", arn)
	}

	log.Info().Str("arn", arn).Str("version", aws.ToString(out.VersionId)).Msg("secret loaded from secrets manager")

	return value, nil
}
