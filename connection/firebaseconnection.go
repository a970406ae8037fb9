package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"kalavedi/config"
	"kalavedi/repository"
	"kalavedi/repository/firestoredb"
	"kalavedi/repository/memory"
)

func FBConnection(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) (*firestore.Client, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	logger.Info("Firestore connection successful", zap.String("projectId", cfg.ProjectID))
	return client, nil
}

// OpenStore returns the repositories selected by APP_STORE.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Store, error) {
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	case "firestore":
		client, err := FBConnection(ctx, cfg.FirebaseConfig, logger)
		if err != nil {
			return nil, err
		}
		return firestoredb.NewStore(client, cfg.NotificationDocID), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
