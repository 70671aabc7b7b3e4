// Package firebaseapp creates the Firebase Admin app shared by the Firestore
// store and the Firebase auth provider.
package firebaseapp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// CredentialsOption prefers base64 encoded service account JSON (for hosts
// where files are awkward) and falls back to a local key file.
func CredentialsOption(encoded, localFilePath string) (option.ClientOption, error) {
	if encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %w", err)
		}
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
		return option.WithCredentialsJSON(decoded), nil
	}

	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
	}
	log.Printf("Firebase: initializing from local file: %s.", localFilePath)
	return option.WithCredentialsFile(localFilePath), nil
}

func New(ctx context.Context, projectID, encoded, localFilePath string) (*firebase.App, error) {
	opt, err := CredentialsOption(encoded, localFilePath)
	if err != nil {
		return nil, err
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
