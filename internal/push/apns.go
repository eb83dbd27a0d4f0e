package push

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"githubPushRelay/internal/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNs delivers alerts through Apple's HTTP/2 provider API.
type APNs struct {
	client *apns2.Client
	topic  string
}

func NewAPNs(client *apns2.Client, topic string) *APNs {
	return &APNs{client: client, topic: topic}
}

// NewAPNsFromConfig builds a token or certificate client, whichever the
// config carries, pointed at the sandbox or production host.
func NewAPNsFromConfig(cfg *config.Config) (*APNs, error) {
	var client *apns2.Client

	if cfg.UsesTokenAuth() {
		key, err := token.AuthKeyFromFile(cfg.APNsAuthKeyPath)
		if err != nil {
			return nil, fmt.Errorf("apns auth key: %w", err)
		}
		client = apns2.NewTokenClient(&token.Token{
			AuthKey: key,
			KeyID:   cfg.APNsKeyID,
			TeamID:  cfg.APNsTeamID,
		})
	} else {
		load := certificate.FromP12File
		if strings.EqualFold(filepath.Ext(cfg.APNsCertPath), ".pem") {
			load = certificate.FromPemFile
		}
		cert, err := load(cfg.APNsCertPath, cfg.APNsCertPass)
		if err != nil {
			return nil, fmt.Errorf("apns certificate: %w", err)
		}
		client = apns2.NewClient(cert)
	}

	if cfg.Production() {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return NewAPNs(client, cfg.APNsBundleID), nil
}

func (a *APNs) Push(ctx context.Context, deviceToken string, msg Message) (Receipt, error) {
	p := payload.NewPayload().
		AlertTitle(msg.Title).
		AlertBody(msg.Body).
		Badge(msg.Badge).
		Sound(msg.Sound)
	for k, v := range msg.Data {
		p.Custom(k, v)
	}

	res, err := a.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       a.topic,
		Payload:     p,
		PushType:    apns2.PushTypeAlert,
		Priority:    apns2.PriorityHigh,
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{
		StatusCode: res.StatusCode,
		Reason:     res.Reason,
		MessageID:  res.ApnsID,
	}, nil
}
