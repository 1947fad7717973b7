package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cloudey/internal/api"
)

// configForm collects provider credentials for the backend config upload.
type configForm struct {
	labels []string
	fields []textinput.Model
	focus  int
}

func newConfigForm() configForm {
	labels := []string{
		"Email",
		"Tenancy OCID",
		"User OCID",
		"Fingerprint",
		"Region",
		"Private key file",
	}
	placeholders := []string{
		"you@example.com",
		"ocid1.tenancy.oc1..",
		"ocid1.user.oc1..",
		"aa:bb:cc:..",
		"eu-frankfurt-1",
		"~/.oci/key.pem",
	}

	fields := make([]textinput.Model, len(labels))
	for i := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		ti.Width = 50
		fields[i] = ti
	}
	return configForm{labels: labels, fields: fields}
}

func (f configForm) Focus() tea.Cmd {
	return f.fields[f.focus].Focus()
}

func (f configForm) Update(msg tea.Msg) (configForm, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return f, cmd
}

func (f *configForm) next() tea.Cmd {
	f.fields[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.fields)
	return f.fields[f.focus].Focus()
}

func (f *configForm) prev() tea.Cmd {
	f.fields[f.focus].Blur()
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].Focus()
}

func (f configForm) onLastField() bool {
	return f.focus == len(f.fields)-1
}

func (f configForm) complete() bool {
	for _, field := range f.fields {
		if strings.TrimSpace(field.Value()) == "" {
			return false
		}
	}
	return true
}

func (f configForm) config() api.OCIConfig {
	return api.OCIConfig{
		Email:          strings.TrimSpace(f.fields[0].Value()),
		TenancyOCID:    strings.TrimSpace(f.fields[1].Value()),
		UserOCID:       strings.TrimSpace(f.fields[2].Value()),
		Fingerprint:    strings.TrimSpace(f.fields[3].Value()),
		Region:         strings.TrimSpace(f.fields[4].Value()),
		PrivateKeyPath: strings.TrimSpace(f.fields[5].Value()),
	}
}

func (f configForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Provider Credentials") + "\n\n")
	for i, label := range f.labels {
		marker := "  "
		if i == f.focus {
			marker = activeStyle.Render("▶ ")
		}
		b.WriteString(marker + infoStyle.Render(label) + "\n")
		b.WriteString("    " + f.fields[i].View() + "\n")
	}
	b.WriteString(helpStyle.Render("\n  enter/tab: next field │ shift+tab: previous │ enter on last field: save │ esc: cancel"))
	return b.String()
}

// configUploadMsg reports the outcome of a credential upload. The form
// stays on screen until it arrives so failures land next to the fields.
type configUploadMsg struct {
	err error
}

func (m Model) handleConfigKey(key string) (Model, tea.Cmd, bool) {
	if m.formBusy {
		return m, nil, true
	}
	switch key {
	case "enter":
		if m.form.onLastField() {
			if !m.form.complete() {
				m.formNote = errorStyle.Render("all credential fields are required")
				return m, nil, true
			}
			m.formBusy = true
			m.formNote = "uploading credentials..."
			return m, m.uploadConfig(m.form.config()), true
		}
		return m, m.form.next(), true
	case "tab", "down":
		return m, m.form.next(), true
	case "shift+tab", "up":
		return m, m.form.prev(), true
	}
	return m, nil, false
}

func (m *Model) uploadConfig(cfg api.OCIConfig) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return configUploadMsg{err: client.UploadOCIConfig(ctx, cfg)}
	}
}
