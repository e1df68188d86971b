package main

import (
	"encoding/json"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/notify"
	"github.com/wneessen/go-mail"
)

func testTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.New("roster").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(`{{.AccountName}} {{inc .SquadIndex}}{{range .Members}} {{.AccountName}}:{{.Role}}{{end}}`)
	require.NoError(t, err)
	return tmpl
}

func TestBuildMsgRosterGenerated(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: notify.MailTypeRosterGenerated,
		To:   "cmd@example.com",
		Data: domain.RosterGeneratedMailData{
			AccountName: "Commander.0001",
			RosterID:    7,
			SquadIndex:  1,
			Members: []domain.RosterMember{
				{PlayerID: 1, AccountName: "Commander.0001", Role: "heal", IsCommander: true},
				{PlayerID: 2, AccountName: "Trainee.0002", Role: domain.RoleDPS},
			},
		},
	})
	require.NoError(t, err)

	m, err := buildMsg("bot@example.com", testTemplate(t), body)
	require.NoError(t, err)

	to := m.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "cmd@example.com")
	assert.Contains(t, m.GetGenHeader(mail.HeaderSubject)[0], "第 2 小队")
}

func TestBuildMsgRejectsUnknownType(t *testing.T) {
	body := []byte(`{"type":"reset_password","to":"a@example.com","data":{}}`)
	_, err := buildMsg("bot@example.com", testTemplate(t), body)
	assert.Error(t, err)

	_, err = buildMsg("bot@example.com", testTemplate(t), []byte(`not json`))
	assert.Error(t, err)
}
