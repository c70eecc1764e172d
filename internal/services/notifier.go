package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// PushNotifier delivers APNs pushes for social events. Pushes are
// best-effort: callers log delivery failures and never fail the request
// that triggered them.
type PushNotifier struct {
	client *apns2.Client
	topic  string
}

// NewPushNotifier creates a push notifier from a PEM certificate.
// Production selects Apple's production gateway; development builds
// should leave it false.
func NewPushNotifier(certFile, certPassword, topic string, production bool) (*PushNotifier, error) {
	cert, err := certificate.FromPemFile(certFile, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushNotifier{client: client, topic: topic}, nil
}

// NotifyFriendRequest pushes a friend-request alert to a device token.
func (n *PushNotifier) NotifyFriendRequest(deviceToken, senderUsername string) {
	n.push(deviceToken, payload.NewPayload().
		AlertTitle("New friend request").
		AlertBody(fmt.Sprintf("%s wants to be your friend", senderUsername)).
		Sound("default"))
}

// NotifyRequestAccepted pushes an acceptance alert to a device token.
func (n *PushNotifier) NotifyRequestAccepted(deviceToken, accepterUsername string) {
	n.push(deviceToken, payload.NewPayload().
		AlertTitle("Friend request accepted").
		AlertBody(fmt.Sprintf("%s accepted your friend request", accepterUsername)).
		Sound("default"))
}

func (n *PushNotifier) push(deviceToken string, p *payload.Payload) {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     p,
	}

	res, err := n.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
	}
}
