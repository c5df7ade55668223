package notify

import (
	"context"
	"net/http"

	"announcehub/pkg/logger"
)

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data"`
}

// FCMSender Firebase推送
type FCMSender struct {
	endpoint    string
	serverToken string
	poster      jsonPoster
}

// NewFCMSender 创建FCM推送发送器
func NewFCMSender(endpoint, serverToken string, client *http.Client, logger *logger.Logger) *FCMSender {
	return &FCMSender{
		endpoint:    endpoint,
		serverToken: serverToken,
		poster:      newJSONPoster("fcm", client, logger),
	}
}

// Send 向单个设备推送通知
func (s *FCMSender) Send(ctx context.Context, deviceToken, title, body string) error {
	msg := fcmMessage{
		To:           deviceToken,
		Priority:     "high",
		Notification: fcmNotification{Title: title, Body: body},
		Data: map[string]string{
			"click_action": "FLUTTER_NOTIFICATION_CLICK",
			"id":           "1",
			"status":       "done",
		},
	}
	headers := map[string]string{"Authorization": "key=" + s.serverToken}
	return s.poster.post(ctx, s.endpoint, headers, msg)
}
