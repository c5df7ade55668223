package notify

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"announcehub/internal/metrics"
	"announcehub/internal/model"
	"announcehub/pkg/async"
	"announcehub/pkg/logger"
)

const taskTimeout = 30 * time.Second

// Mailer 审核结果邮件
type Mailer interface {
	Enabled() bool
	SendApproved(to, title, description string, announcementID int) error
	SendRejected(to, title, description string) error
}

// Notifier 审核流程中的通知
//
// 通知通过异步队列发送：不阻塞、不重试、不保证顺序，队列满时丢弃。未配置的渠道直接跳过。
type Notifier struct {
	worker  *async.Worker
	discord *DiscordSender
	fcm     *FCMSender
	mailer  Mailer
	logger  *logger.Logger
}

// NewNotifier 创建通知器，discord、fcm、mailer均可为nil
func NewNotifier(worker *async.Worker, discord *DiscordSender, fcm *FCMSender, mailer Mailer, logger *logger.Logger) *Notifier {
	return &Notifier{
		worker:  worker,
		discord: discord,
		fcm:     fcm,
		mailer:  mailer,
		logger:  logger,
	}
}

// ApplicationSubmitted 新申请提醒
func (n *Notifier) ApplicationSubmitted(app model.Application) {
	if n.discord == nil {
		return
	}
	n.dispatch("discord", func(ctx context.Context) error {
		return n.discord.SendApplication(ctx, app)
	})
}

// ApplicationReviewed 审核结果通知，announcementID仅在通过时有效
func (n *Notifier) ApplicationReviewed(app model.Application, announcementID int) {
	title, body := reviewMessage(app, announcementID)

	if n.fcm != nil && app.FCM != nil && *app.FCM != "" {
		token := *app.FCM
		n.dispatch("fcm", func(ctx context.Context) error {
			return n.fcm.Send(ctx, token, title, body)
		})
	}

	if n.mailer != nil && n.mailer.Enabled() && isEmail(app.Applicant) {
		description := ""
		if app.ReviewDescription != nil {
			description = *app.ReviewDescription
		}
		n.dispatch("email", func(context.Context) error {
			if app.IsApproved() {
				return n.mailer.SendApproved(app.Applicant, app.Title, description, announcementID)
			}
			return n.mailer.SendRejected(app.Applicant, app.Title, description)
		})
	}
}

func (n *Notifier) dispatch(channel string, send func(ctx context.Context) error) {
	ok := n.worker.Submit(async.Task{
		Name:    channel,
		Timeout: taskTimeout,
		Handler: func(ctx context.Context) error {
			if err := send(ctx); err != nil {
				metrics.RecordNotification(channel, "failed")
				return fmt.Errorf("%s notification: %w", channel, err)
			}
			metrics.RecordNotification(channel, "sent")
			return nil
		},
	})
	if !ok {
		metrics.RecordNotification(channel, "dropped")
		n.logger.Warn("通知已丢弃", "channel", channel)
	}
}

func reviewMessage(app model.Application, announcementID int) (string, string) {
	if app.IsApproved() {
		return "Application approved", fmt.Sprintf("%s (announcement #%d)", app.Title, announcementID)
	}
	body := app.Title
	if app.ReviewDescription != nil && *app.ReviewDescription != "" {
		body += ": " + *app.ReviewDescription
	}
	return "Application rejected", body
}

// isEmail 用户名是否为邮箱地址（第三方登录的用户名为邮箱）
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
