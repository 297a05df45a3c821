package mail

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/config"
	"storefront/internal/usecase"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer は注文確認メールをSMTPで送る。
type SMTPMailer struct {
	cfg config.Config
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, to string, conf usecase.OrderConfirmation) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.MailFrom); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}

	msg.Subject(fmt.Sprintf("ご注文ありがとうございます（注文番号: %d）", conf.OrderID))
	msg.SetBodyString(gomail.TypeTextPlain, buildBody(conf))

	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.SMTPPort != "" {
		if port, err := strconv.Atoi(m.cfg.SMTPPort); err == nil {
			opts = append(opts, gomail.WithPort(port))
		}
	}
	if m.cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.SMTPUser),
			gomail.WithPassword(m.cfg.SMTPPass),
		)
	}

	client, err := gomail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildBody(conf usecase.OrderConfirmation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ご注文を受け付けました。\n\n")
	fmt.Fprintf(&b, "注文番号: %d\n", conf.OrderID)
	fmt.Fprintf(&b, "お届け先: %s\n\n", conf.AddressText)

	for _, line := range conf.Lines {
		fmt.Fprintf(&b, "  %s  %d円 x %d = %d円\n", line.Name, line.Price, line.Qty, line.Subtotal)
	}

	fmt.Fprintf(&b, "\n合計: %d円\n", conf.Total)
	return b.String()
}
