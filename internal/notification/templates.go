// internal/notification/templates.go

package notification

import (
	"bytes"
	"fmt"
	"html/template"
	textTemplate "text/template"
)

type messageTemplate struct {
	title *textTemplate.Template
	body  *textTemplate.Template
}

func mustMessageTemplate(name, title, body string) messageTemplate {
	return messageTemplate{
		title: textTemplate.Must(textTemplate.New(name + "_title").Option("missingkey=zero").Parse(title)),
		body:  textTemplate.Must(textTemplate.New(name + "_body").Option("missingkey=zero").Parse(body)),
	}
}

var defaultTemplates = map[Type]messageTemplate{
	TypeMatchRequest: mustMessageTemplate(string(TypeMatchRequest),
		"New workout partner request",
		"{{.senderName}} wants to train with you. You are a {{.matchScore}}% match."),
	TypeMatchResponse: mustMessageTemplate(string(TypeMatchResponse),
		"Match request {{.status}}",
		"{{.senderName}} {{.status}} your workout partner request."),
}

// render fills in Title and Body from the type's template when they are empty
func render(n *Notification) (title, body string, err error) {
	title, body = n.Title, n.Body
	if title != "" && body != "" {
		return title, body, nil
	}

	tmpl, ok := defaultTemplates[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %q", n.Type)
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}

	var buf bytes.Buffer
	if title == "" {
		if err := tmpl.title.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("failed to render title: %w", err)
		}
		title = buf.String()
		buf.Reset()
	}
	if body == "" {
		if err := tmpl.body.Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("failed to render body: %w", err)
		}
		body = buf.String()
	}
	return title, body, nil
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
  <div style="background: #0f766e; color: #fff; padding: 24px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">{{.Title}}</h1>
  </div>
  <div style="border: 1px solid #e0e0e0; padding: 24px; border-radius: 0 0 8px 8px;">
    <p>Hi {{.Name}},</p>
    <p>{{.Body}}</p>
    <p><a href="{{.AppURL}}" style="color: #0f766e;">Open FitBuddy</a></p>
  </div>
</body>
</html>`))

// renderEmailHTML wraps a rendered notification in the HTML email layout
func renderEmailHTML(name, title, body, appURL string) (string, error) {
	var buf bytes.Buffer
	err := emailLayout.Execute(&buf, map[string]string{
		"Name":   name,
		"Title":  title,
		"Body":   body,
		"AppURL": appURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
