// Command bucketgate-lambda runs the gateway behind an API Gateway HTTP API
// or a Lambda function URL (payload format 2.0).
//
// Configuration comes from the environment only; config files and flags are
// not read.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(nil, nil)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		slog.Error("create gateway", "err", err)
		os.Exit(1)
	}

	adapter := httpadapter.NewV2(app.Handler())
	lambda.Start(adapter.ProxyWithContext)
}
