package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClient(t *testing.T) {
	type want struct {
		baseURL        string
		initData       string
		bridgeTimeout  time.Duration
		requestTimeout time.Duration
		navigateDelay  time.Duration
		plainAlerts    bool
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name: "defaults",
			want: want{
				baseURL:        "http://localhost:8080",
				bridgeTimeout:  7 * time.Second,
				requestTimeout: 10 * time.Second,
				navigateDelay:  1500 * time.Millisecond,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"BASE_URL":       "https://shop.example.com",
				"INIT_DATA":      "user=x&hash=y",
				"BRIDGE_TIMEOUT": "2s",
				"NAVIGATE_DELAY": "0s",
				"PLAIN_ALERTS":   "true",
			},
			want: want{
				baseURL:        "https://shop.example.com",
				initData:       "user=x&hash=y",
				bridgeTimeout:  2 * time.Second,
				requestTimeout: 10 * time.Second,
				navigateDelay:  1500 * time.Millisecond,
				plainAlerts:    true,
			},
		},
		{
			name:  "flags only",
			flags: []string{"-b", "localhost:9000", "-i", "flagdata", "-t", "3s", "-plain-alerts", "-navigate-delay", "0s"},
			want: want{
				baseURL:        "localhost:9000",
				initData:       "flagdata",
				bridgeTimeout:  3 * time.Second,
				requestTimeout: 10 * time.Second,
				plainAlerts:    true,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"BASE_URL":        "http://env:1",
				"REQUEST_TIMEOUT": "1s",
			},
			flags: []string{"-b", "http://flag:2", "-request-timeout", "5s"},
			want: want{
				baseURL:        "http://env:1",
				bridgeTimeout:  7 * time.Second,
				requestTimeout: time.Second,
				navigateDelay:  1500 * time.Millisecond,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := ParseClient()
			require.NoError(t, err)

			assert.Equal(t, tt.want.baseURL, cfg.BaseURL)
			assert.Equal(t, tt.want.initData, cfg.InitData)
			assert.Equal(t, tt.want.bridgeTimeout, cfg.BridgeTimeout)
			assert.Equal(t, tt.want.requestTimeout, cfg.RequestTimeout)
			assert.Equal(t, tt.want.navigateDelay, cfg.NavigateDelay)
			assert.Equal(t, tt.want.plainAlerts, cfg.PlainAlerts)
		})
	}
}

func TestParseServer(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		flags       []string
		wantAddress string
		wantToken   string
		wantSecret  string
		wantErr     bool
	}{
		{
			name:    "token required",
			wantErr: true,
		},
		{
			name:        "flags only",
			flags:       []string{"-a", "localhost:7777", "-k", "flag-token", "-s", "flag-secret"},
			wantAddress: "localhost:7777",
			wantToken:   "flag-token",
			wantSecret:  "flag-secret",
		},
		{
			name:        "env overrides flags",
			env:         map[string]string{"RUN_ADDRESS": "env:9000", "BOT_TOKEN": "env-token"},
			flags:       []string{"-a", "flag:8000", "-k", "flag-token"},
			wantAddress: "env:9000",
			wantToken:   "env-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := ParseServer()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantAddress, cfg.RunAddress)
			assert.Equal(t, tt.wantToken, cfg.BotToken)
			assert.Equal(t, tt.wantSecret, cfg.SessionSecret)
		})
	}
}
