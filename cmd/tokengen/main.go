// tokengen フロントエンド（Web/Bot）向けのAPIトークンを発行するCLI。
// 発行したトークンはAuthorization: Bearerヘッダーで使用する。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"redeem-server/internal/application/auth"
	"redeem-server/internal/infrastructure/config"
	otelinfra "redeem-server/internal/infrastructure/observability/otel"

	"go.opentelemetry.io/otel"
)

func main() {
	clientID := flag.String("client-id", "", "client identifier to embed in the token")
	flag.Parse()

	if *clientID == "" {
		log.Fatal("usage: tokengen -client-id <id>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := otelinfra.NewLogger(otel.Tracer("tokengen"))
	svc := auth.NewAuthApplicationService(&cfg.JWT, logger)

	resp, err := svc.GenerateToken(context.Background(), &auth.GenerateTokenRequest{
		ClientID: *clientID,
	})
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("%s %s\n", resp.TokenType, resp.Token)
	fmt.Printf("expires in %d seconds\n", resp.ExpiresIn)
}
