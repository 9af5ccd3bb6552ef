package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tehbot/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uuidOne   = "03560274-043C-05E0-6906-F30700080009"
	uuidTwo   = "03560274-043C-05E0-6906-B70700080009"
	uuidThree = "03560274-043C-05E0-6906-F10700080009"
)

func baseViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.Set(keyBotToken, "token")
	v.Set(keyAllowedChatID, "-100123")
	v.Set(keyAPIURL, "https://club.example/api/command")
	v.Set(keyAPIKey, "secret")
	v.Set(keyWorkstations, map[string]interface{}{"1": uuidOne})
	return v
}

func TestLoad(t *testing.T) {
	cfg, err := Load(baseViper(), nil)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, int64(-100123), cfg.AllowedChatID)
	assert.Equal(t, int64(0), cfg.AdminChatID)
	assert.True(t, cfg.BangPrefix)
	assert.Equal(t, 15*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, domain.ClubConfig{
		APIURL:  "https://club.example/api/command",
		APIKey:  "secret",
		ClubID:  1,
		Timeout: 5 * time.Second,
	}, cfg.Club)
	assert.Equal(t, map[int]string{1: uuidOne}, cfg.Workstations)
	assert.False(t, cfg.Reminder.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		environ []string
		wantErr error
	}{
		{
			name:    "missing token",
			mutate:  func(v *viper.Viper) { v.Set(keyBotToken, "") },
			wantErr: domain.ErrMissingConfig,
		},
		{
			name:    "missing allowed chat",
			mutate:  func(v *viper.Viper) { v.Set(keyAllowedChatID, "") },
			wantErr: domain.ErrMissingConfig,
		},
		{
			name:    "allowed chat not a number",
			mutate:  func(v *viper.Viper) { v.Set(keyAllowedChatID, "my-group") },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "missing api url",
			mutate:  func(v *viper.Viper) { v.Set(keyAPIURL, "") },
			wantErr: domain.ErrMissingConfig,
		},
		{
			name:    "missing api key",
			mutate:  func(v *viper.Viper) { v.Set(keyAPIKey, "") },
			wantErr: domain.ErrMissingConfig,
		},
		{
			name:    "bad club id",
			mutate:  func(v *viper.Viper) { v.Set(keyClubID, "one") },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "bad timeout",
			mutate:  func(v *viper.Viper) { v.Set(keyAPITimeout, "soon") },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "no workstations",
			mutate:  func(v *viper.Viper) { v.Set(keyWorkstations, map[string]interface{}{}) },
			wantErr: domain.ErrMissingConfig,
		},
		{
			name: "reminder with bad time",
			mutate: func(v *viper.Viper) {
				v.Set(keyReminderOn, true)
				v.Set(keyReminderText, "hi")
				v.Set(keyReminderTime, "25:00")
			},
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "broken reply template",
			mutate:  func(v *viper.Viper) { v.Set(keyReplyFailed, "{{.Reason") },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name: "reminder without text",
			mutate: func(v *viper.Viper) {
				v.Set(keyReminderOn, true)
			},
			wantErr: domain.ErrMissingConfig,
		},
		{
			name: "reminder with unknown timezone",
			mutate: func(v *viper.Viper) {
				v.Set(keyReminderOn, true)
				v.Set(keyReminderText, "hi")
				v.Set(keyReminderTZ, "Mars/Olympus")
			},
			wantErr: domain.ErrInvalidConfig,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := baseViper()
			tc.mutate(v)

			_, err := Load(v, tc.environ)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad_WorkstationsFromEnvironOverrideFile(t *testing.T) {
	v := baseViper()
	v.Set(keyWorkstations, map[string]interface{}{"1": uuidOne, "2": uuidOne, "x": uuidTwo})

	cfg, err := Load(v, []string{"PC_UUID_2=" + uuidTwo, "PC_UUID_3=" + uuidThree, "PATH=/bin"})
	require.NoError(t, err)

	assert.Equal(t, map[int]string{1: uuidOne, 2: uuidTwo, 3: uuidThree}, cfg.Workstations)
}

func TestLoad_Reminder(t *testing.T) {
	v := baseViper()
	v.Set(keyReminderOn, true)
	v.Set(keyReminderTime, "09:30")
	v.Set(keyReminderDays, "Monday, thu")
	v.Set(keyReminderText, "*wipe the desks*")
	v.Set(keyReminderTZ, "UTC")
	v.Set(keyReminderMD, true)

	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ReminderSchedule{
		Enabled:    true,
		Hour:       9,
		Minute:     30,
		Weekdays:   []time.Weekday{time.Monday, time.Thursday},
		Location:   time.UTC,
		ChatID:     -100123,
		Body:       "*wipe the desks*",
		Formatting: domain.Markdown,
	}, cfg.Reminder)
}

func TestLoad_Replies(t *testing.T) {
	v := baseViper()
	v.Set(keyReplySwitched, "✅ ПК {{.Workstation}} переведён в тех. режим.")
	v.Set(keyReplyNotFound, "❌ ПК {{.Workstation}} не найден.")

	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.Replies{
		Switched: "✅ ПК {{.Workstation}} переведён в тех. режим.",
		NotFound: "❌ ПК {{.Workstation}} не найден.",
	}, cfg.Replies)
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []time.Weekday
		wantErr bool
	}{
		{name: "short names", in: "mon,wed,fri", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{name: "long names and spaces", in: "Sunday Saturday", want: []time.Weekday{time.Sunday, time.Saturday}},
		{name: "duplicates collapse", in: "tue, tuesday", want: []time.Weekday{time.Tuesday}},
		{name: "unknown", in: "mon,funday", wantErr: true},
		{name: "too short", in: "mo", wantErr: true},
		{name: "bad long form", in: "monxyz", wantErr: true},
		{name: "empty", in: " , ", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseWeekdays(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock(" 07:05 ")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("7pm")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	toml := `
[telegram]
bot_token = "file-token"
allowed_chat_id = -100777

[club]
api_url = "https://club.example/api"
api_key = "file-key"
id = 4

[workstations]
"1" = "` + uuidOne + `"
"2" = "` + uuidTwo + `"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))
	t.Setenv("API_KEY", "env-key")

	v, err := NewViper(dir)
	require.NoError(t, err)

	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.BotToken)
	assert.Equal(t, int64(-100777), cfg.AllowedChatID)
	assert.Equal(t, "env-key", cfg.Club.APIKey)
	assert.Equal(t, 4, cfg.Club.ClubID)
	assert.Equal(t, map[int]string{1: uuidOne, 2: uuidTwo}, cfg.Workstations)
}

func TestNewViper_NoFile(t *testing.T) {
	v, err := NewViper(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", v.GetString(keyLogLevel))
}
