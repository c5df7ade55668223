package notify

import (
	"context"
	"fmt"
	"net/http"

	"announcehub/internal/model"
	"announcehub/pkg/logger"
)

// DiscordWebhookPayload Discord webhook消息
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed Discord embed对象
type DiscordEmbed struct {
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url,omitempty"`
	Image       *DiscordEmbedImage `json:"image,omitempty"`
}

// DiscordEmbedImage embed中的图片
type DiscordEmbedImage struct {
	URL string `json:"url"`
}

// DiscordSender 新申请提醒
type DiscordSender struct {
	webhookURL string
	poster     jsonPoster
}

// NewDiscordSender 创建Discord webhook发送器，client为nil时使用默认超时
func NewDiscordSender(webhookURL string, client *http.Client, logger *logger.Logger) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		poster:     newJSONPoster("discord", client, logger),
	}
}

// SendApplication 发送新申请提醒
func (s *DiscordSender) SendApplication(ctx context.Context, app model.Application) error {
	return s.poster.post(ctx, s.webhookURL, nil, buildApplicationPayload(app))
}

func buildApplicationPayload(app model.Application) DiscordWebhookPayload {
	description := "No description :("
	if app.Description != nil {
		description = *app.Description
	}
	fcm := "null"
	if app.FCM != nil {
		fcm = *app.FCM
	}

	embed := DiscordEmbed{
		Title: app.Title,
		Description: fmt.Sprintf("Application_id: %s\nTitle: **%s**\nDescription: %s\napplicant: %s\nfcm: %s",
			app.ApplicationID, app.Title, description, app.Applicant, fcm),
	}
	if app.URL != nil {
		embed.URL = *app.URL
	}
	if app.ImgURL != nil && *app.ImgURL != "" {
		embed.Image = &DiscordEmbedImage{URL: *app.ImgURL}
	}

	return DiscordWebhookPayload{
		Content: fmt.Sprintf("New application, \n%s\n %s", app.ApplicationID, app.Title),
		Embeds:  []DiscordEmbed{embed},
	}
}
