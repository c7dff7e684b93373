package notification

import (
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Template string

const (
	TemplateOrderPlaced    Template = "order_placed"
	TemplateOrderApproved  Template = "order_approved"
	TemplateOrderCancelled Template = "order_cancelled"

	// templateGreeting is used for any name outside the registry.
	templateGreeting Template = "greeting"
	templateSubject  Template = "email_subject"
)

const (
	DefaultCustomerName = "valued customer"
	DefaultOrderID      = "unknown"
)

// Data fills a template. Empty fields take the defaults above.
type Data struct {
	CustomerName string
	OrderID      string
}

var catalog = map[language.Tag][]*i18n.Message{
	language.English: {
		{ID: string(TemplateOrderPlaced), Other: "Hello {{.CustomerName}}, your order #{{.OrderID}} has been placed successfully."},
		{ID: string(TemplateOrderApproved), Other: "Good news, {{.CustomerName}}! Your order #{{.OrderID}} has been approved."},
		{ID: string(TemplateOrderCancelled), Other: "Sorry, {{.CustomerName}}. Your order #{{.OrderID}} has been cancelled."},
		{ID: string(templateGreeting), Other: "Hello {{.CustomerName}}."},
		{ID: string(templateSubject), Other: "Update on order #{{.OrderID}}"},
	},
	language.Indonesian: {
		{ID: string(TemplateOrderPlaced), Other: "Halo {{.CustomerName}}, pesanan #{{.OrderID}} Anda berhasil dibuat."},
		{ID: string(TemplateOrderApproved), Other: "Kabar baik, {{.CustomerName}}! Pesanan #{{.OrderID}} Anda telah disetujui."},
		{ID: string(TemplateOrderCancelled), Other: "Maaf, {{.CustomerName}}. Pesanan #{{.OrderID}} Anda telah dibatalkan."},
		{ID: string(templateGreeting), Other: "Halo {{.CustomerName}}."},
		{ID: string(templateSubject), Other: "Kabar pesanan #{{.OrderID}}"},
	},
}

var known = map[Template]bool{
	TemplateOrderPlaced:    true,
	TemplateOrderApproved:  true,
	TemplateOrderCancelled: true,
}

// Registry renders the fixed set of notification templates for one locale.
type Registry struct {
	localizer *i18n.Localizer
}

// NewRegistry builds the registry for locale, e.g. "en" or "id". Unknown locales fall
// back to English.
func NewRegistry(locale string) (*Registry, error) {
	bundle := i18n.NewBundle(language.English)
	for tag, messages := range catalog {
		if err := bundle.AddMessages(tag, messages...); err != nil {
			return nil, fmt.Errorf("failed to load %s messages: %w", tag, err)
		}
	}
	return &Registry{localizer: i18n.NewLocalizer(bundle, locale, language.English.String())}, nil
}

// Render returns the message for name. It never fails: unknown names render the
// generic greeting.
func (r *Registry) Render(name Template, data Data) string {
	if !known[name] {
		name = templateGreeting
	}
	return r.localize(name, data)
}

func (r *Registry) Subject(data Data) string {
	return r.localize(templateSubject, data)
}

func (r *Registry) localize(name Template, data Data) string {
	if data.CustomerName == "" {
		data.CustomerName = DefaultCustomerName
	}
	if data.OrderID == "" {
		data.OrderID = DefaultOrderID
	}
	msg, err := r.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    string(name),
		TemplateData: data,
	})
	if err != nil {
		return "Hello " + data.CustomerName + "."
	}
	return msg
}
