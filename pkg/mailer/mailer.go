package mailer

import (
	"fmt"
	"strings"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
	"go.uber.org/zap"

	"github.com/vEnhance/atheweb/config"
)

// Mailer 邮件发送接口
// SMTP 未配置时注入 NopMailer，邀请流程照常工作（链接通过 API 返回）
type Mailer interface {
	Send(toName, toEmail, subject, htmlBody string) error
}

// ── SMTP 实现 ──

type smtpMailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewMailer 根据配置选择实现：有 SMTP host 用真实发送，否则只记日志
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Info("SMTP 未配置，邮件功能降级为日志输出")
		return &nopMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg, logger: logger}
}

// Send 通过 SMTP 发送一封 HTML 邮件
// 每次发送新建连接（低频场景，不维护长连接）
func (m *smtpMailer) Send(toName, toEmail, subject, htmlBody string) error {
	server := mail.NewSMTPClient()
	server.Host = m.cfg.SMTPHost
	server.Port = m.cfg.SMTPPort
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password

	switch m.cfg.SMTPPort {
	case 465:
		server.Encryption = mail.EncryptionSSL
	case 587:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	server.Authentication = mail.AuthLogin
	server.KeepAlive = false
	server.ConnectTimeout = 30 * time.Second
	server.SendTimeout = 30 * time.Second

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("连接 SMTP 服务器失败: %w", err)
	}

	msg := mail.NewMSG().
		SetFrom(m.cfg.From).
		AddTo(toName + " <" + strings.TrimSpace(toEmail) + ">").
		SetSubject(subject).
		SetBody(mail.TextHTML, htmlBody)

	if msg.Error != nil {
		return fmt.Errorf("构造邮件失败: %w", msg.Error)
	}

	if err := msg.Send(client); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	m.logger.Info("邮件已发送", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// ── 降级实现 ──

type nopMailer struct {
	logger *zap.Logger
}

func (m *nopMailer) Send(toName, toEmail, subject, _ string) error {
	m.logger.Info("邮件未发送（SMTP 未配置）",
		zap.String("to", toEmail),
		zap.String("subject", subject),
	)
	return nil
}
