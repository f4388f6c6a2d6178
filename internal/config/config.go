package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Cosmic-Birthday/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Cosmic Birthday"
	AppCommand        = "cosmic-birthday"
	AppID             = "com.github.talos-git.cosmic-birthday"
	KeyringService    = "com.github.talos-git.cosmic-birthday"
	KeyringFactsUser  = "facts-api-key"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DotEnvFile        = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and exported calendars.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig   = "config"
	FlagDebug    = "debug"
	FlagLang     = "lang"
	FlagOutput   = "output"
	FlagBirth    = "birth"
	FlagVCard    = "vcard"
	FlagName     = "name"
	FlagCountry  = "country"
	FlagFactsURL = "facts-url"
	FlagFactsKey = "facts-key"
	FlagInterval = "interval"
	FlagPort     = "port"
	FlagAt       = "at"
	FlagOut      = "out"
	FlagReminder = "reminder"
	FlagFor      = "for"
	FlagNoFacts  = "no-facts"

	FlagDescConfig   = "Config file (default is ./.cosmic-birthday.yaml or $HOME/.cosmic-birthday.yaml)"
	FlagDescDebug    = "Enable debug logging to stderr"
	FlagDescLang     = "Label language (en, fr)"
	FlagDescOutput   = "Output format: table, json or plain"
	FlagDescBirth    = "Birth date (YYYY-MM-DD, RFC3339 or YYYY-MM-DDTHH:MM:SS)"
	FlagDescVCard    = "Read the birth date from a vCard file or http(s) URL instead of --birth"
	FlagDescName     = "Display name (also selects the card in --vcard)"
	FlagDescCountry  = "ISO 3166 country code used to personalize facts"
	FlagDescFactsURL = "Base URL of the facts generator (empty uses the local generator)"
	FlagDescFactsKey = "Bearer key for the facts generator (default: OS keyring)"
	FlagDescInterval = "Recalculation interval"
	FlagDescPort     = "HTTP port bound on 127.0.0.1"
	FlagDescAt       = "Evaluate at this instant instead of now"
	FlagDescOut      = "Write to this file instead of stdout"
	FlagDescReminder = "ISO8601 alarm trigger for calendar events (e.g. -P1D)"
	FlagDescFor      = "Stop after this duration (0 runs until interrupted)"
	FlagDescNoFacts  = "Skip facts retrieval in live and serve"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper)
// -----------------------------------------------------------------------------

const (
	ConfigFileName = ".cosmic-birthday"
	ConfigFileType = "yaml"
	EnvPrefix      = "COSMIC_BIRTHDAY"

	// Legacy environment names of the hosted facts generator.
	EnvSupabaseURL = "SUPABASE_URL"
	EnvSupabaseKey = "SUPABASE_ANON_KEY"

	// Nested calendar keys (.cosmic-birthday.yaml: calendar.reminder).
	KeyCalendarReminder = "calendar.reminder"
)

// SupportedLanguages defines the list of available label languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Output Formats
// -----------------------------------------------------------------------------

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputPlain = "plain"
)

// OutputFormats lists accepted values for --output.
var OutputFormats = []string{OutputTable, OutputJSON, OutputPlain}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTitle            = "title"
	TKeyLblSubject       = "lbl_subject"
	TKeyLblYears         = "lbl_years"
	TKeyLblMonths        = "lbl_months"
	TKeyLblDays          = "lbl_days"
	TKeyLblHours         = "lbl_hours"
	TKeyLblMinutes       = "lbl_minutes"
	TKeyLblSeconds       = "lbl_seconds"
	TKeyLblTotalDays     = "lbl_total_days"
	TKeyLblDayOfWeek     = "lbl_day_of_week"
	TKeyLblNextBirthday  = "lbl_next_birthday"
	TKeyLblNextMilestone = "lbl_next_milestone"
	TKeyLblNoMilestone   = "lbl_no_milestone"
	TKeyLblBirthdayToday = "lbl_birthday_today"
	TKeyLblFacts         = "lbl_facts"
	TKeyLblFactsGeneric  = "lbl_facts_generic"
	TKeyLblTimeline      = "lbl_timeline"
	TKeyLblHalted        = "lbl_halted"
	TKeyColStat          = "col_stat"
	TKeyColValue         = "col_value"
	TKeyColAge           = "col_age"
	TKeyColDate          = "col_date"
	TKeyColStatus        = "col_status"
	TKeyColDescription   = "col_description"
	TKeyStatusReached    = "status_reached"
	TKeyStatusUpcoming   = "status_upcoming"   // Requires Days
	TKeyMilestoneValue   = "milestone_value"   // Requires Age, Days
	TKeyDaysValue        = "days_value"        // Requires Days
	TKeyCelebrate        = "celebrate"         // Requires Name, Age
	TKeyEvtSummary       = "event_summary"     // Requires Name, Age
	TKeyEvtSummaryBirth  = "event_birth"       // Requires Name
	TKeyEvtMilestone     = "event_milestone"   // Requires Name, Age
	TKeyTimelineYoung    = "timeline_young"    // Requires Age
	TKeyTimelinePrefix   = "timeline_"         // Suffixed with the age
	TKeyCatHistorical    = "cat_historical"    // Facts category headings
	TKeyCatPopCulture    = "cat_pop_culture"
	TKeyCatTechnology    = "cat_technology"
	TKeyCatCelebrities   = "cat_celebrities"
	TKeyCatComparisons   = "cat_comparisons"
	TKeyFactsSource      = "facts_source"      // Requires Source
	TKeyServeListening   = "serve_listening"   // Requires Addr
	TKeyKeyStored        = "key_stored"
	TKeyKeyDeleted       = "key_deleted"
	TKeyKeyMissing       = "key_missing"
	TKeyCalendarWritten  = "calendar_written"  // Requires Path
	TKeyLiveStopHint     = "live_stop_hint"
	TKeyLiveNextRefresh  = "live_next_refresh" // Requires Interval
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort            = "18080"
	DefaultLanguage        = "en"
	DefaultOutput          = OutputTable
	DefaultTickInterval    = 1 * time.Second
	MinTickInterval        = 100 * time.Millisecond
	DefaultFactsMaxRetries = 2
	DefaultFeedSpanYears   = 1 // Anniversaries before and after the current age
	UIDSalt                = "cosmic-birthday-v1-"

	// EarliestBirthYear bounds the accepted birth dates (1900-01-01).
	EarliestBirthYear = 1900

	// DaysPerWeek sizes the fixed weekday table.
	DaysPerWeek = 7
)

// Milestone ages, in ascending order.
var MilestoneAges = []int{18, 21, 25, 30, 40, 50, 60, 70, 80, 90, 100}

// Timeline ages, in ascending order.
var TimelineAges = []int{0, 5, 10, 15, 18, 21, 25, 30, 40, 50, 60, 70, 80, 90, 100}

// WeekdayNames is indexed 0=Sunday..6=Saturday, matching time.Weekday.
var WeekdayNames = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Cosmic Birthday//Engine//EN"
	ICalCalName   = "Cosmic Birthday"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "cosmicbirthday"

	ICalCategoryBirthday  = "BIRTHDAY"
	ICalCategoryMilestone = "MILESTONE"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropCategories  = "CATEGORIES"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for birth dates (entry and vCard BDAY).
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05"
	DateFormatMinutes   = "2006-01-02 15:04"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// DateFormatWire is the facts request birthdate layout.
	DateFormatWire = "2006-01-02"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 1 * 1024 * 1024 // 1MB
	MaxRequestBodySize  = 64 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	// MaxConsecutiveCardErrors stops vCard imports from a reader that keeps failing.
	MaxConsecutiveCardErrors = 16

	RouteStats    = "/api/stats"
	RouteTimeline = "/api/timeline"
	RouteCalendar = "/calendar.ics"
	RouteFacts    = "/functions/v1/generate-facts"
	RouteMetrics  = "/metrics"
	RouteHealth   = "/healthz"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAuthorization   = "Authorization"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderCORSOrigin      = "Access-Control-Allow-Origin"
	HeaderCORSHeaders     = "Access-Control-Allow-Headers"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CORSAllowOrigin     = "*"
	CORSAllowHeaders    = "authorization, x-client-info, apikey, content-type"
	BearerPrefix        = "Bearer "
	HealthBody          = "ok"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrBirthAfterNow    = "birth instant is after the evaluation instant"
	ErrBirthTooEarly    = "birth date is before 1900-01-01"
	ErrBirthMissing     = "a birth date is required (--birth or --vcard)"
	ErrDateParse        = "unable to parse date"
	ErrYearUnknown      = "birth date has no year"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardNoBirthday  = "no card with a usable birthday"
	ErrVCardOpen        = "failed to open vCard file"
	ErrVCardFetch       = "failed to download vCard"
	ErrCountryInvalid   = "invalid ISO 3166 country code"
	ErrTickFailed       = "recalculation failed, loop halted"
	ErrObserverMissing  = "internal error: loop observer is not set"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrIntervalTooShort = "interval must be at least 100ms"
	ErrOutputFormat     = "output must be one of table, json, plain"
	ErrReminderFormat   = "reminder must be an ISO8601 duration such as -P1D or PT2H"
	ErrLanguage         = "unsupported language"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrFactsRequest     = "failed to build facts request"
	ErrFactsNetwork     = "network error during facts fetch"
	ErrFactsStatus      = "facts generator returned unexpected status"
	ErrFactsDecode      = "failed to decode facts response"
	ErrFactsRejected    = "facts generator reported failure"
	ErrBirthdateMissing = "birthdate is required"
	ErrBodyInvalid      = "request body is not valid JSON"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrConfigRead       = "error reading config file"
	ErrConfigDecode     = "failed to decode settings"
	ErrKeyringGet       = "failed to read facts key from keyring"
	ErrKeyringSet       = "failed to store facts key in keyring"
	ErrKeyringDelete    = "failed to delete facts key from keyring"
	ErrKeyEmpty         = "key must not be empty"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrWriteOutput      = "failed to write output"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Statistics initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgHalted       = "Recalculation halted"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackName          = "You"
	FallbackSummary       = "Birthday: %s (%d)"
	FallbackSummaryBirth  = "Birth: %s"
	FallbackMilestone     = "Milestone: %s turns %d"
	FallbackTimelineYoung = "%d years young"
	FallbackCelebrate     = "Happy milestone, %s! %d years!"

	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLoopStarted    = "Recalculation loop started"
	MsgLoopStopped    = "Recalculation loop stopped"
	MsgLoopReplaced   = "Replacing active subject"
	MsgLoopHalted     = "Recalculation loop halted"
	MsgClockBackwards = "Clock moved backwards, holding last instant"
	MsgCelebrate      = "Milestone celebrated"
	MsgFactsAttempt   = "Requesting personalized facts"
	MsgFactsRetry     = "Facts request failed, retrying"
	MsgFactsFallback  = "Facts unavailable, using fallback"
	MsgFactsLoaded    = "Personalized facts loaded"
	MsgFactsLocal     = "No facts URL configured, using local generator"
	MsgFactsPrefetch  = "Facts prefetched"
	MsgFeedGenerated  = "Calendar feed generated"
	MsgSubjectLoaded  = "Subject loaded"
	MsgVCardDownload  = "Downloading vCard"
	MsgVCardStatus    = "vCard server returned error status"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgConfigMissing  = "No config file found, using defaults"
	MsgDotEnvLoaded   = "Loaded .env file"
	MsgKeyringMiss    = "Facts key not found in keyring"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Facts Sources & Outcomes
// -----------------------------------------------------------------------------

const (
	SourceRemote   = "remote"
	SourceLocal    = "local"
	SourceFallback = "fallback"

	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyInterval  = "interval"
	LogKeySubject   = "subject"
	LogKeyBirth     = "birth"
	LogKeyCountry   = "country"
	LogKeyAge       = "age"
	LogKeyAttempt   = "attempt"
	LogKeySource    = "source"
	LogKeyValue     = "value"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyLast      = "last"
	LogKeyNow       = "now"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompConfig   = "config"
	CompEngine   = "engine"
	CompLoop     = "loop"
	CompCalendar = "calendar"
	CompFacts    = "facts"
	CompServer   = "server"
	CompUI       = "ui"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricNamespace  = "cosmic_birthday"
	MetricLabelOut   = "outcome"
	MetricTickBucket = 0.0001
)
