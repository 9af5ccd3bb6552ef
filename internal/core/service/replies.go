package service

import (
	"bytes"
	"fmt"
	"tehbot/internal/core/domain"
	"text/template"
)

const (
	defaultSwitched    = "✅ Workstation {{.Workstation}} switched to tech mode."
	defaultNotFound    = "❌ Workstation {{.Workstation}} not found."
	defaultFailed      = "❌ Error: {{.Reason}}"
	defaultInvalid     = "❌ Invalid command. Use `teh<N>`, where `N` is the workstation number."
	defaultInvalidBang = "❌ Invalid command. Use `teh<N>` or `!teh<N>`, where `N` is the workstation number."
	defaultAudit       = "{{.Sender}} (id {{.SenderID}}) switched workstation {{.Workstation}} to tech mode in chat {{.ChatID}}."
)

type replyData struct {
	Workstation int
	Reason      string
	Sender      string
	SenderID    int64
	ChatID      int64
}

// Replies renders the texts the dispatcher sends back to the chat.
type Replies struct {
	switched *template.Template
	notFound *template.Template
	failed   *template.Template
	invalid  *template.Template
	audit    *template.Template
}

// NewReplies compiles cfg, using the English defaults for empty fields. Every template is
// executed once against sample data so an unknown field fails at startup, not in the chat.
func NewReplies(cfg domain.Replies, allowBang bool) (*Replies, error) {
	invalid := defaultInvalid
	if allowBang {
		invalid = defaultInvalidBang
	}

	var r Replies
	fields := []struct {
		name string
		text string
		def  string
		dst  **template.Template
	}{
		{"switched", cfg.Switched, defaultSwitched, &r.switched},
		{"not_found", cfg.NotFound, defaultNotFound, &r.notFound},
		{"failed", cfg.Failed, defaultFailed, &r.failed},
		{"invalid", cfg.Invalid, invalid, &r.invalid},
		{"audit", cfg.Audit, defaultAudit, &r.audit},
	}

	sample := replyData{Workstation: 1, Reason: "reason", Sender: "@user", SenderID: 1, ChatID: 1}

	for _, f := range fields {
		text := f.text
		if text == "" {
			text = f.def
		}

		tmpl, err := template.New(f.name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: replies.%s: %w", domain.ErrInvalidConfig, f.name, err)
		}

		if err := tmpl.Execute(new(bytes.Buffer), sample); err != nil {
			return nil, fmt.Errorf("%w: replies.%s: %w", domain.ErrInvalidConfig, f.name, err)
		}

		*f.dst = tmpl
	}

	return &r, nil
}

func defaultReplies(allowBang bool) *Replies {
	r, err := NewReplies(domain.Replies{}, allowBang)
	if err != nil {
		panic(err)
	}

	return r
}

func render(tmpl *template.Template, data replyData) string {
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return fmt.Sprintf("%s: %s", tmpl.Name(), err)
	}

	return buf.String()
}
