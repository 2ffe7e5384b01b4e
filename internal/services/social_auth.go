package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// SocialUserInfo is what the identity provider hands back for a verified
// bearer credential. SubjectID is the provider's stable user id and doubles
// as the local username for social accounts.
type SocialUserInfo struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
	Provider  string
}

// IdentityProvider verifies third-party bearer credentials.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (*SocialUserInfo, error)
}

// FirebaseIdentityProvider verifies Firebase ID tokens server-side.
type FirebaseIdentityProvider struct {
	client *auth.Client
	log    *zap.Logger
}

var _ IdentityProvider = (*FirebaseIdentityProvider)(nil)

func NewFirebaseIdentityProvider(ctx context.Context, projectID, credentialsJSON string, log *zap.Logger) (*FirebaseIdentityProvider, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseIdentityProvider{client: client, log: log}, nil
}

func (p *FirebaseIdentityProvider) Verify(ctx context.Context, token string) (*SocialUserInfo, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		p.log.Warn("firebase token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	info := &SocialUserInfo{
		SubjectID: decoded.UID,
		Provider:  "firebase",
	}
	if decoded.Firebase.SignInProvider != "" {
		info.Provider = decoded.Firebase.SignInProvider
	}
	if email, ok := decoded.Claims["email"].(string); ok {
		info.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		info.Name = name
	}
	if picture, ok := decoded.Claims["picture"].(string); ok {
		info.AvatarURL = picture
	}
	if info.Email == "" {
		return nil, ErrInvalidToken
	}
	return info, nil
}
