package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/profitcalc/profitcalc-backend/config"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an
// Auth client. Returns (nil, nil) when no credentials are configured,
// which switches the middleware into its development fallback.
func InitializeFirebase(cfg config.AuthConfig) (*fbauth.Client, error) {
	if cfg.FirebaseCredentialsPath == "" {
		return nil, nil
	}

	opt := option.WithCredentialsFile(cfg.FirebaseCredentialsPath)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}
