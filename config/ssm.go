package config

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadSSMParameters fetches all parameters under SSM_PATH from AWS SSM
// Parameter Store and writes them into the process environment, overriding
// anything loaded from .env. It is a no-op when AWS_ACCESS_KEY_ID is unset,
// so local development works without AWS access.
func LoadSSMParameters(ctx context.Context) error {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return nil
	}

	region := os.Getenv("SSM_REGION")
	if region == "" {
		region = "us-east-2"
	}
	path := os.Getenv("SSM_PATH")
	if path == "" {
		path = "/echoo"
	}

	awsCfg := aws.Config{
		Region: region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	}
	client := ssm.NewFromConfig(awsCfg)

	var nextToken *string
	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(path),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		})
		if err != nil {
			return err
		}
		for _, p := range out.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			// "/echoo/POSTGRES_USER" -> "POSTGRES_USER"
			name := (*p.Name)[strings.LastIndex(*p.Name, "/")+1:]
			os.Setenv(name, *p.Value)
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}
	return nil
}
