package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// isolate keeps Load away from the developer's own config file and env.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	for _, name := range []string{config.EnvSupabaseURL, config.EnvSupabaseKey} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLanguage, s.Lang)
	assert.Equal(t, config.DefaultOutput, s.Output)
	assert.Equal(t, config.DefaultTickInterval, s.Interval)
	assert.Equal(t, config.DefaultPort, s.Port)
	assert.Empty(t, s.Calendar.Reminder)
	assert.NoError(t, s.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
lang: fr
output: json
interval: 2s
birth: "1990-05-15"
country: FR
calendar:
  reminder: -P1D
`)

	v := viper.New()
	v.Set(config.FlagConfig, path)
	s, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "fr", s.Lang)
	assert.Equal(t, config.OutputJSON, s.Output)
	assert.Equal(t, 2*time.Second, s.Interval)
	assert.Equal(t, "1990-05-15", s.Birth)
	assert.Equal(t, "FR", s.Country)
	assert.Equal(t, "-P1D", s.Calendar.Reminder)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".cosmic-birthday.yaml", []byte("name: Ada\n"), config.FilePermUserRW))

	s, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.Name)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("COSMIC_BIRTHDAY_OUTPUT", "plain")
	t.Setenv("COSMIC_BIRTHDAY_CALENDAR_REMINDER", "PT2H")
	t.Setenv(config.EnvSupabaseURL, "https://facts.example.com")
	t.Setenv(config.EnvSupabaseKey, "anon-key")

	s, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.OutputPlain, s.Output)
	assert.Equal(t, "PT2H", s.Calendar.Reminder)
	assert.Equal(t, "https://facts.example.com", s.FactsURL)
	assert.Equal(t, "anon-key", s.FactsKey)
}

func TestLoad_PrefixedEnvironmentWins(t *testing.T) {
	isolate(t)
	t.Setenv("COSMIC_BIRTHDAY_FACTS_URL", "https://primary.example.com")
	t.Setenv(config.EnvSupabaseURL, "https://legacy.example.com")

	s, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example.com", s.FactsURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		isolate(t)
		v := viper.New()
		v.Set(config.FlagConfig, filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := config.Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrConfigRead)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		isolate(t)
		v := viper.New()
		v.Set(config.FlagConfig, writeConfig(t, "lang: [unterminated\n"))

		_, err := config.Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrConfigRead)
	})

	t.Run("BadDuration", func(t *testing.T) {
		isolate(t)
		v := viper.New()
		v.Set(config.FlagConfig, writeConfig(t, "interval: soon\n"))

		_, err := config.Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrConfigDecode)
	})
}

func TestSettings_Validate(t *testing.T) {
	valid := func() config.Settings {
		s := config.Settings{
			Lang:     "en",
			Output:   config.OutputTable,
			Interval: time.Second,
			Port:     "8080",
		}
		s.Calendar.Reminder = "-P1D"
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"Valid", func(*config.Settings) {}, ""},
		{"PortMissing", func(s *config.Settings) { s.Port = "" }, config.ErrPortRequired},
		{"PortNotNumber", func(s *config.Settings) { s.Port = "http" }, config.ErrPortNumber},
		{"PortZero", func(s *config.Settings) { s.Port = "0" }, config.ErrPortRange},
		{"PortTooHigh", func(s *config.Settings) { s.Port = "65536" }, config.ErrPortRange},
		{"IntervalTooShort", func(s *config.Settings) { s.Interval = 50 * time.Millisecond }, config.ErrIntervalTooShort},
		{"IntervalAtMinimum", func(s *config.Settings) { s.Interval = config.MinTickInterval }, ""},
		{"UnknownOutput", func(s *config.Settings) { s.Output = "xml" }, config.ErrOutputFormat},
		{"UnknownLanguage", func(s *config.Settings) { s.Lang = "de" }, config.ErrLanguage},
		{"BadReminder", func(s *config.Settings) { s.Calendar.Reminder = "1 day" }, config.ErrReminderFormat},
		{"NoReminder", func(s *config.Settings) { s.Calendar.Reminder = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidReminder(t *testing.T) {
	tests := []struct {
		trigger string
		want    bool
	}{
		{"", true},
		{"-P1D", true},
		{"P2D", true},
		{"-PT15M", true},
		{"PT2H30M", true},
		{"-P1DT12H", true},
		{"-P1W", true},
		{"+PT0S", true},
		{"P", false},
		{"-P", false},
		{"PT", false},
		{"-P1DT", false},
		{"1D", false},
		{"-P1H", false},
		{"P1W2D", false},
		{"tomorrow", false},
	}
	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			assert.Equal(t, tt.want, config.ValidReminder(tt.trigger))
		})
	}
}
