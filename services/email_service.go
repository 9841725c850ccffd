package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/startup-platform/utils"
)

const emailLayout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #1f2937;">
<div style="max-width: 600px; margin: 0 auto; padding: 24px;">
<h2 style="color: #4f46e5;">Startup Investment Platform</h2>
{{template "content" .}}
<p><a href="{{.FrontendURL}}{{.Path}}" style="color: #4f46e5;">Open the platform</a></p>
<p style="font-size: 12px; color: #6b7280;">You received this email because you have an account on the Startup Investment Platform.</p>
</div></body></html>{{end}}`

var emailBodies = map[string]string{
	"offer_received": `{{define "content"}}<p>Good news! <strong>{{.InvestorName}}</strong> has made an investment offer of <strong>{{.Amount}}</strong> for <strong>{{.StartupName}}</strong>.</p>
<p>Review the offer and respond from your dashboard.</p>{{end}}`,
	"offer_accepted": `{{define "content"}}<p>Congratulations! Your investment offer of <strong>{{.Amount}}</strong> for <strong>{{.StartupName}}</strong> has been accepted.</p>
<p>The founders will be in touch to discuss next steps.</p>{{end}}`,
	"offer_rejected": `{{define "content"}}<p>Your investment offer of <strong>{{.Amount}}</strong> for <strong>{{.StartupName}}</strong> was not accepted this time.</p>
<p>There are many more startups looking for investors like you.</p>{{end}}`,
	"new_message": `{{define "content"}}<p>You have a new message from <strong>{{.SenderName}}</strong>.</p>{{end}}`,
	"welcome": `{{define "content"}}<p>Hi {{.FirstName}},</p>
<p>Welcome to the Startup Investment Platform! Complete your profile to start connecting with startups and investors.</p>{{end}}`,
}

var emailSubjects = map[string]string{
	"offer_received": "New Investment Offer for {{.StartupName}}",
	"offer_accepted": "Your Investment Offer Has Been Accepted!",
	"offer_rejected": "Update on Your Investment Offer",
	"new_message":    "New Message from {{.SenderName}}",
	"welcome":        "Welcome to Startup Investment Platform!",
}

type emailData struct {
	FrontendURL  string
	Path         string
	InvestorName string
	StartupName  string
	SenderName   string
	FirstName    string
	Amount       string
}

// EmailService renders the platform's transactional emails.
type EmailService struct {
	mailer      Mailer
	frontendURL string
	templates   map[string]*template.Template
	subjects    map[string]*texttemplate.Template
}

func NewEmailService(mailer Mailer, frontendURL string) *EmailService {
	templates := make(map[string]*template.Template, len(emailBodies))
	for name, body := range emailBodies {
		t := template.Must(template.New(name).Parse(emailLayout))
		templates[name] = template.Must(t.Parse(body))
	}
	subjects := make(map[string]*texttemplate.Template, len(emailSubjects))
	for name, subject := range emailSubjects {
		subjects[name] = texttemplate.Must(texttemplate.New(name).Parse(subject))
	}
	return &EmailService{mailer: mailer, frontendURL: frontendURL, templates: templates, subjects: subjects}
}

func (s *EmailService) SendOfferReceived(ctx context.Context, to, investorName, startupName string, amount decimal.Decimal) error {
	return s.send(ctx, to, "offer_received", emailData{
		Path:         "/offers",
		InvestorName: investorName,
		StartupName:  startupName,
		Amount:       utils.FormatCurrency(amount),
	})
}

func (s *EmailService) SendOfferAccepted(ctx context.Context, to, startupName string, amount decimal.Decimal) error {
	return s.send(ctx, to, "offer_accepted", emailData{
		Path:        "/offers",
		StartupName: startupName,
		Amount:      utils.FormatCurrency(amount),
	})
}

func (s *EmailService) SendOfferRejected(ctx context.Context, to, startupName string, amount decimal.Decimal) error {
	return s.send(ctx, to, "offer_rejected", emailData{
		Path:        "/offers",
		StartupName: startupName,
		Amount:      utils.FormatCurrency(amount),
	})
}

func (s *EmailService) SendNewMessage(ctx context.Context, to, senderName string) error {
	return s.send(ctx, to, "new_message", emailData{
		Path:       "/messages",
		SenderName: senderName,
	})
}

func (s *EmailService) SendWelcome(ctx context.Context, to, firstName string) error {
	return s.send(ctx, to, "welcome", emailData{
		Path:      "/dashboard",
		FirstName: firstName,
	})
}

func (s *EmailService) send(ctx context.Context, to, name string, data emailData) error {
	if to == "" {
		return permanent(fmt.Errorf("email %q has no recipient", name))
	}
	data.FrontendURL = s.frontendURL

	var subject strings.Builder
	if err := s.subjects[name].Execute(&subject, data); err != nil {
		return permanent(fmt.Errorf("render %s subject: %w", name, err))
	}
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return permanent(fmt.Errorf("render %s email: %w", name, err))
	}
	return s.mailer.Send(ctx, to, subject.String(), buf.String())
}
