package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"sitecrew/config"
)

type Firebase struct {
	Firestore *firestore.Client
	Messaging *messaging.Client
}

func (f *Firebase) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}

// FBConnection returns nil when Firebase is not configured.
func FBConnection(ctx context.Context, env config.FirebaseEnv) (*Firebase, error) {
	if !env.Enabled() {
		return nil, nil
	}
	var cfg *firebase.Config
	if env.ProjectID != "" {
		cfg = &firebase.Config{ProjectID: env.ProjectID}
	}
	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(env.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore client: %w", err)
	}
	msg, err := app.Messaging(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("error initializing messaging client: %w", err)
	}
	return &Firebase{Firestore: fs, Messaging: msg}, nil
}
