package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
)

// sandbox isolates a command run from the user's files, config and keyring.
func sandbox(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvSupabaseURL, "")
	t.Setenv(config.EnvSupabaseKey, "")
	require.NoError(t, os.Unsetenv(config.EnvSupabaseURL))
	require.NoError(t, os.Unsetenv(config.EnvSupabaseKey))
	t.Chdir(t.TempDir())
	keyring.MockInit()
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const (
	birthArg = "--birth=1990-05-15"
	atArg    = "--at=2024-06-01T12:00:00"
)

func TestVersion(t *testing.T) {
	sandbox(t)

	code, out, _ := run(t, "version")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Cosmic Birthday version "+config.Version))
}

func TestStats(t *testing.T) {
	sandbox(t)

	t.Run("Plain", func(t *testing.T) {
		code, out, stderr := run(t, "stats", birthArg, atArg, "-o", "plain", "--name", "Ada")
		require.Equal(t, config.ExitCodeSuccess, code, stderr)
		assert.Contains(t, out, "Subject: Ada\n")
		assert.Contains(t, out, "Years: 34\n")
		assert.Contains(t, out, "Months: 0\n")
		assert.Contains(t, out, "Days: 17\n")
		assert.Contains(t, out, "Born on a: Tuesday\n")
		assert.Contains(t, out, "Next milestone: 40 years in")
	})

	t.Run("JSON", func(t *testing.T) {
		code, out, stderr := run(t, "stats", birthArg, atArg, "--output=json", "--country=jp")
		require.Equal(t, config.ExitCodeSuccess, code, stderr)

		var doc struct {
			Name    string `json:"name"`
			Country string `json:"country"`
			Stats   struct {
				Years         int `json:"years"`
				NextMilestone struct {
					Age int `json:"age"`
				} `json:"nextMilestone"`
			} `json:"stats"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, config.FallbackName, doc.Name)
		assert.Equal(t, "JP", doc.Country)
		assert.Equal(t, 34, doc.Stats.Years)
		assert.Equal(t, 40, doc.Stats.NextMilestone.Age)
	})

	t.Run("French", func(t *testing.T) {
		code, out, stderr := run(t, "stats", birthArg, atArg, "-o", "plain", "--lang", "fr")
		require.Equal(t, config.ExitCodeSuccess, code, stderr)
		assert.Contains(t, out, "Années: 34\n")
	})
}

func TestStats_Errors(t *testing.T) {
	sandbox(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"NoBirth", []string{"stats"}, config.ErrBirthMissing},
		{"BirthAfterNow", []string{"stats", "--birth=2030-01-01", atArg}, config.ErrBirthAfterNow},
		{"BirthTooEarly", []string{"stats", "--birth=1850-01-01"}, config.ErrBirthTooEarly},
		{"Yearless", []string{"stats", "--birth=--05-15"}, config.ErrYearUnknown},
		{"Unparseable", []string{"stats", "--birth=someday"}, config.ErrDateParse},
		{"BadAt", []string{"stats", birthArg, "--at=later"}, config.ErrDateParse},
		{"BadCountry", []string{"stats", birthArg, "--country=zz9"}, config.ErrCountryInvalid},
		{"BadOutput", []string{"stats", birthArg, "-o", "xml"}, config.ErrOutputFormat},
		{"BadLanguage", []string{"stats", birthArg, "--lang", "de"}, config.ErrLanguage},
		{"MissingVCard", []string{"stats", "--vcard", "absent.vcf"}, config.ErrVCardOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, config.ExitCodeError, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestStats_ConfigFileAndEnv(t *testing.T) {
	sandbox(t)
	require.NoError(t, os.WriteFile(".cosmic-birthday.yaml", []byte("birth: \"1990-05-15\"\nname: Grace\n"), config.FilePermUserRW))
	t.Setenv("COSMIC_BIRTHDAY_OUTPUT", "plain")

	code, out, stderr := run(t, "stats", atArg)
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Subject: Grace\n")

	code, out, stderr = run(t, "stats", atArg, "--name", "Ada")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Subject: Ada\n", "flags override the config file")
}

func TestStats_VCard(t *testing.T) {
	sandbox(t)
	card := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nBDAY:1990-05-15\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Grace Hopper\r\nBDAY:19800101\r\nEND:VCARD\r\n"
	require.NoError(t, os.WriteFile("people.vcf", []byte(card), config.FilePermUserRW))

	code, out, stderr := run(t, "stats", "--vcard", "people.vcf", atArg, "-o", "plain")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Subject: Ada Lovelace\n")

	code, out, stderr = run(t, "stats", "--vcard", "people.vcf", "--name", "grace hopper", atArg, "-o", "plain")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Years: 44\n")
}

func TestStats_RemoteVCard(t *testing.T) {
	sandbox(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ada" || pass != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nBDAY:1990-05-15\r\nEND:VCARD\r\n")
	}))
	defer ts.Close()

	url := strings.Replace(ts.URL, "http://", "http://ada:pw@", 1) + "/ada.vcf"
	code, out, stderr := run(t, "stats", "--vcard", url, atArg, "-o", "plain")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Subject: Ada Lovelace\n")

	code, _, stderr = run(t, "stats", "--vcard", ts.URL+"/ada.vcf", atArg)
	assert.NotEqual(t, config.ExitCodeSuccess, code)
	assert.Contains(t, stderr, config.ErrVCardFetch)
}

func TestTimeline(t *testing.T) {
	sandbox(t)

	code, out, stderr := run(t, "timeline", birthArg, atArg, "-o", "plain")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(config.TimelineAges))
	assert.Equal(t, "0\t1990-05-15\tReached\tBorn into the world", lines[0])
	assert.Equal(t, "40\t2030-05-15\tIn 2174 days\tFabulous forties", lines[8])
}

func TestFacts_Local(t *testing.T) {
	sandbox(t)

	code, out, stderr := run(t, "facts", birthArg, atArg, "-o", "json", "--country", "FR")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)

	var res facts.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Personalized)
	assert.Equal(t, config.SourceLocal, res.Source)
	require.NotEmpty(t, res.Facts.PopCulture)
	assert.Contains(t, res.Facts.PopCulture[0], "France")
}

func TestFacts_Remote(t *testing.T) {
	sandbox(t)
	require.NoError(t, config.StoreFactsKey("stored-key"))

	var gotAuth string
	var gotReq facts.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, config.RouteFacts, r.URL.Path)
		gotAuth = r.Header.Get(config.HeaderAuthorization)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set(config.HeaderContentType, config.MimeJSON)
		_ = json.NewEncoder(w).Encode(facts.Response{
			Success: true,
			Facts:   facts.Facts{HistoricalEvents: []string{"Remote fact"}},
			Age:     34,
		})
	}))
	defer ts.Close()

	code, out, stderr := run(t, "facts", birthArg, atArg, "-o", "plain", "--facts-url", ts.URL)
	require.Equal(t, config.ExitCodeSuccess, code, stderr)

	assert.Equal(t, config.BearerPrefix+"stored-key", gotAuth, "the keyring key is used when no flag is set")
	assert.Equal(t, "1990-05-15", gotReq.Birthdate)
	assert.Equal(t, 34, gotReq.CurrentAge)
	assert.Contains(t, out, "  - Remote fact\n")
	assert.Contains(t, out, "Source: remote")
}

func TestFacts_RemoteFailureFallsBack(t *testing.T) {
	sandbox(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	code, out, stderr := run(t, "facts", birthArg, atArg, "-o", "json", "--facts-url", ts.URL, "--facts-key", "bad")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)

	var res facts.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Personalized)
	assert.Equal(t, config.SourceFallback, res.Source)
	assert.Equal(t, facts.Fallback(), res.Facts)
}

func TestCalendar(t *testing.T) {
	sandbox(t)

	t.Run("Stdout", func(t *testing.T) {
		code, out, stderr := run(t, "calendar", birthArg, atArg, "--name", "Ada", "--reminder", "-P1D")
		require.Equal(t, config.ExitCodeSuccess, code, stderr)
		assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
		assert.Contains(t, out, "SUMMARY:Ada turns 34")
		assert.Contains(t, out, "SUMMARY:Milestone: Ada turns 40")
		assert.Contains(t, out, "TRIGGER:-P1D")
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ada.ics")
		code, out, stderr := run(t, "calendar", birthArg, atArg, "--out", path)
		require.Equal(t, config.ExitCodeSuccess, code, stderr)
		assert.Equal(t, "Calendar written to "+path+"\n", out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "END:VCALENDAR")
		assert.NotContains(t, string(data), "TRIGGER")
	})

	t.Run("BadReminder", func(t *testing.T) {
		code, _, stderr := run(t, "calendar", birthArg, "--reminder", "tomorrow")
		assert.Equal(t, config.ExitCodeError, code)
		assert.Contains(t, stderr, config.ErrReminderFormat)
	})
}

func TestKey(t *testing.T) {
	sandbox(t)

	code, out, _ := run(t, "key", "show")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Equal(t, "No facts API key is stored\n", out)

	code, out, _ = run(t, "key", "set", "abc123")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Equal(t, "Facts API key stored in the system keyring\n", out)

	code, out, _ = run(t, "key", "show")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Equal(t, "abc123\n", out)

	code, out, _ = run(t, "key", "delete")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Equal(t, "Facts API key removed from the system keyring\n", out)

	code, out, _ = run(t, "key", "delete")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Equal(t, "No facts API key is stored\n", out)
}

func TestKeySet_Stdin(t *testing.T) {
	sandbox(t)

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	defer a.close()
	root := newRootCmd(a)
	root.SetArgs([]string{"key", "set"})
	root.SetIn(strings.NewReader("  from-stdin  \n"))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	require.NoError(t, root.Execute())

	key, err := config.ResolveFactsKey("")
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", key)
}

func TestLive(t *testing.T) {
	sandbox(t)

	code, out, stderr := run(t, "live", birthArg, "--interval", "100ms", "--for", "350ms", "-o", "plain")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)

	assert.GreaterOrEqual(t, strings.Count(out, "Subject: You\n"), 2)
	assert.Equal(t, 1, strings.Count(out, "Source: local"), "facts are printed once when not redrawing")
}

func TestLive_NoFacts(t *testing.T) {
	sandbox(t)

	code, out, stderr := run(t, "live", birthArg, "--interval", "100ms", "--for", "150ms", "-o", "plain", "--no-facts")
	require.Equal(t, config.ExitCodeSuccess, code, stderr)
	assert.Contains(t, out, "Subject: You\n")
	assert.NotContains(t, out, "Source:")
}

func TestLive_RejectsShortInterval(t *testing.T) {
	sandbox(t)

	code, _, stderr := run(t, "live", birthArg, "--interval", "10ms")
	assert.Equal(t, config.ExitCodeError, code)
	assert.Contains(t, stderr, config.ErrIntervalTooShort)
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", config.LocalhostBindAddr+":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func TestServe(t *testing.T) {
	sandbox(t)
	port := freePort(t)
	base := "http://" + config.LocalhostBindAddr + ":" + port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr bytes.Buffer
	exit := make(chan int, 1)
	go func() {
		exit <- execute(ctx, []string{"serve", birthArg, "--name", "Ada", "--port", port, "--interval", "100ms"}, &stdout, &stderr)
	}()

	get := func(path string) (int, string) {
		resp, err := http.Get(base + path)
		if err != nil {
			return 0, ""
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	require.Eventually(t, func() bool {
		code, _ := get(config.RouteStats)
		return code == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	_, body := get(config.RouteStats)
	assert.Contains(t, body, `"name":"Ada"`)

	require.Eventually(t, func() bool {
		code, _ := get(config.RouteCalendar)
		return code == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	_, body = get(config.RouteCalendar)
	assert.Contains(t, body, "Ada turns")

	code, body := get(config.RouteHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, config.HealthBody, body)

	resp, err := http.Post(base+config.RouteFacts, config.MimeJSON, strings.NewReader(`{"birthdate":"1990-05-15","currentAge":34}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = get(config.RouteMetrics)
	assert.Contains(t, body, config.MetricNamespace+"_")

	cancel()
	select {
	case code := <-exit:
		assert.Equal(t, config.ExitCodeSuccess, code, stderr.String())
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	assert.Equal(t, "Serving on http://"+config.LocalhostBindAddr+":"+port+"\n", stdout.String())
}
