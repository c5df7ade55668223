package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"announcehub/pkg/logger"
)

// Config 邮件配置
type Config struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// EmailType 邮件类型
type EmailType string

const (
	// TypeApproved 申请通过
	TypeApproved EmailType = "application_approved"
	// TypeRejected 申请被拒绝
	TypeRejected EmailType = "application_rejected"
)

// EmailData 邮件数据
type EmailData struct {
	To             string // 收件人
	Subject        string // 邮件主题
	ProductName    string // 产品名称
	Title          string // 申请标题
	Description    string // 审核说明
	ApplicationID  string
	AnnouncementID int
}

var templates = template.Must(template.New(string(TypeApproved)).Parse(approvedTemplate))

func init() {
	template.Must(templates.New(string(TypeRejected)).Parse(rejectedTemplate))
}

const approvedTemplate = `<p>您提交的申请 <b>{{.Title}}</b> 已通过审核，公告编号 {{.AnnouncementID}}。</p>
{{if .Description}}<p>审核说明：{{.Description}}</p>{{end}}
<p>{{.ProductName}}</p>`

const rejectedTemplate = `<p>您提交的申请 <b>{{.Title}}</b> 未通过审核。</p>
{{if .Description}}<p>审核说明：{{.Description}}</p>{{end}}
<p>修改申请后将重新进入审核。</p>
<p>{{.ProductName}}</p>`

// Service 邮件服务
type Service struct {
	config Config
	logger *logger.Logger
	send   func(to, subject, body string) error
}

// NewService 创建邮件服务
func NewService(config Config, logger *logger.Logger) *Service {
	s := &Service{
		config: config,
		logger: logger,
	}
	s.send = s.smtpSend
	return s
}

// Enabled 是否配置了SMTP服务器
func (s *Service) Enabled() bool {
	return s.config.Host != "" && s.config.From != ""
}

// SendEmail 发送邮件
func (s *Service) SendEmail(emailType EmailType, data EmailData) error {
	if data.ProductName == "" {
		data.ProductName = "Announcements"
	}

	if data.Subject == "" {
		switch emailType {
		case TypeApproved:
			data.Subject = fmt.Sprintf("%s - 申请已通过", data.ProductName)
		case TypeRejected:
			data.Subject = fmt.Sprintf("%s - 申请未通过", data.ProductName)
		}
	}

	content, err := renderTemplate(emailType, data)
	if err != nil {
		return fmt.Errorf("渲染邮件模板失败: %w", err)
	}

	return s.send(data.To, data.Subject, content)
}

// renderTemplate 渲染邮件模板
func renderTemplate(emailType EmailType, data EmailData) (string, error) {
	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, string(emailType), data); err != nil {
		return "", fmt.Errorf("执行邮件模板失败: %w", err)
	}
	return buf.String(), nil
}

// smtpSend 通过TLS连接SMTP服务器发送邮件
func (s *Service) smtpSend(to, subject, body string) error {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("创建TLS连接失败: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP认证失败: %w", err)
	}
	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("准备发送数据失败: %w", err)
	}
	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("邮件已发送", "to", to)
	return client.Quit()
}

// SendApproved 发送申请通过邮件
func (s *Service) SendApproved(to, title, description string, announcementID int) error {
	return s.SendEmail(TypeApproved, EmailData{
		To:             to,
		Title:          title,
		Description:    description,
		AnnouncementID: announcementID,
	})
}

// SendRejected 发送申请被拒绝邮件
func (s *Service) SendRejected(to, title, description string) error {
	return s.SendEmail(TypeRejected, EmailData{
		To:          to,
		Title:       title,
		Description: description,
	})
}
