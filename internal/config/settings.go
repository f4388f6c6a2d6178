package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved configuration: flags over environment over the
// config file over defaults.
type Settings struct {
	Debug    bool          `mapstructure:"debug"`
	Lang     string        `mapstructure:"lang"`
	Output   string        `mapstructure:"output"`
	Birth    string        `mapstructure:"birth"`
	VCard    string        `mapstructure:"vcard"`
	Name     string        `mapstructure:"name"`
	Country  string        `mapstructure:"country"`
	FactsURL string        `mapstructure:"facts-url"`
	FactsKey string        `mapstructure:"facts-key"`
	NoFacts  bool          `mapstructure:"no-facts"`
	Interval time.Duration `mapstructure:"interval"`
	Port     string        `mapstructure:"port"`
	Calendar struct {
		Reminder string `mapstructure:"reminder"`
	} `mapstructure:"calendar"`
}

var reminderPattern = regexp.MustCompile(`^[-+]?P(\d+W|(\d+D)?(T(\d+H)?(\d+M)?(\d+S)?)?)$`)

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(FlagDebug, false)
	v.SetDefault(FlagLang, DefaultLanguage)
	v.SetDefault(FlagOutput, DefaultOutput)
	v.SetDefault(FlagInterval, DefaultTickInterval)
	v.SetDefault(FlagPort, DefaultPort)
	v.SetDefault(FlagNoFacts, false)
	v.SetDefault(KeyCalendarReminder, "")
}

// Load reads the config file named by the "config" key, or .cosmic-birthday.yaml
// in the working or home directory, then overlays the environment.
// A missing default config file is not an error.
func Load(v *viper.Viper) (Settings, error) {
	if file := v.GetString(FlagConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(FlagFactsURL, EnvPrefix+"_FACTS_URL", EnvSupabaseURL)
	_ = v.BindEnv(FlagFactsKey, EnvPrefix+"_FACTS_KEY", EnvSupabaseKey)

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
		slog.Debug(MsgConfigMissing, LogKeyComponent, CompConfig)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}
	return s, nil
}

// Validate checks the values that have a closed domain.
func (s Settings) Validate() error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	if s.Interval < MinTickInterval {
		return fmt.Errorf("%s: %s", ErrIntervalTooShort, s.Interval)
	}
	if !slices.Contains(OutputFormats, s.Output) {
		return fmt.Errorf("%s: %q", ErrOutputFormat, s.Output)
	}
	if !slices.Contains(SupportedLanguages, s.Lang) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Lang)
	}
	if !ValidReminder(s.Calendar.Reminder) {
		return fmt.Errorf("%s: %q", ErrReminderFormat, s.Calendar.Reminder)
	}
	return nil
}

// ValidatePort checks that port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if n < MinPort || n > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, n)
	}
	return nil
}

// ValidReminder reports whether trigger is empty or an ISO8601 duration
// such as -P1D, PT2H or -P1W.
func ValidReminder(trigger string) bool {
	if trigger == "" {
		return true
	}
	if trigger == ISOPeriodPrefix || trigger == ISONegativePrefix || strings.HasSuffix(trigger, "T") {
		return false
	}
	return reminderPattern.MatchString(trigger)
}
