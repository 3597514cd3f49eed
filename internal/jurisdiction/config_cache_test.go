package jurisdiction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
organization: "Springfield City Council"
timezone: "America/Chicago"
api_url: "https://webapi.legistar.com/v1/springfield"
events_page: "https://springfield.legistar.com/Calendar.aspx"

settings:
  enabled: true
  timeout: 15
  bills: true
  events: true

bills:
  sessions: [2018, 2014]
  types:
    "Ordinance": bill
    "Report": ~
`

	err := os.WriteFile(filepath.Join(tempDir, "springfield.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(Dir(tempDir))
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("springfield")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "springfield" {
		t.Errorf("Expected name 'springfield', got '%s'", config.Name)
	}
	if config.Settings.GetTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.Settings.GetTimeout())
	}
	if config.Location().String() != "America/Chicago" {
		t.Errorf("Expected location America/Chicago, got %s", config.Location())
	}

	code, ok := config.Bills.Types["Report"]
	if !ok {
		t.Error("Expected null bill type label to be kept")
	}
	if code != "" {
		t.Errorf("Expected empty code for null bill type, got '%s'", code)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"minimal.yml": &fstest.MapFile{Data: []byte(`
organization: "Minimal Council"
timezone: "UTC"
api_url: "https://webapi.legistar.com/v1/minimal"
`)},
	}

	configCache := NewConfigCache(fsys)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
	if config.Settings.EventWindow != 3 {
		t.Errorf("Expected default event window 3, got %d", config.Settings.EventWindow)
	}
	if config.Settings.CreatedAfter != "2015-01-01" {
		t.Errorf("Expected default created_after 2015-01-01, got %s", config.Settings.CreatedAfter)
	}
	if config.Status.LocationMarker != "room" {
		t.Errorf("Expected default location marker 'room', got '%s'", config.Status.LocationMarker)
	}
	if config.Settings.GetEventWindow() != 72*time.Hour {
		t.Errorf("Expected event window 72h, got %v", config.Settings.GetEventWindow())
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing organization",
			content: `
timezone: "UTC"
api_url: "https://webapi.legistar.com/v1/x"
`,
			wantErr: "organization is required",
		},
		{
			name: "bad timezone",
			content: `
organization: "X"
timezone: "Mars/Olympus"
api_url: "https://webapi.legistar.com/v1/x"
`,
			wantErr: "invalid timezone",
		},
		{
			name: "relative url",
			content: `
organization: "X"
timezone: "UTC"
api_url: "webapi/v1/x"
`,
			wantErr: "must be an absolute URL",
		},
		{
			name: "unknown bill code",
			content: `
organization: "X"
timezone: "UTC"
api_url: "https://webapi.legistar.com/v1/x"
bills:
  types:
    "Ordinance": law
`,
			wantErr: "invalid bill type code",
		},
		{
			name: "bills without sessions",
			content: `
organization: "X"
timezone: "UTC"
api_url: "https://webapi.legistar.com/v1/x"
settings:
  bills: true
`,
			wantErr: "at least one session",
		},
		{
			name: "bad created_after",
			content: `
organization: "X"
timezone: "UTC"
api_url: "https://webapi.legistar.com/v1/x"
settings:
  created_after: "January 2015"
`,
			wantErr: "invalid created_after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"x.yml": &fstest.MapFile{Data: []byte(tt.content)}}

			err := NewConfigCache(fsys).Run()
			if err == nil {
				t.Fatal("Expected error for invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	configCache := NewConfigCache(fstest.MapFS{})
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if _, err := configCache.GetConfig("nowhere"); err == nil {
		t.Error("Expected error for unknown jurisdiction")
	}
}

func TestDefaults(t *testing.T) {
	configCache := NewConfigCache(Defaults())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	names := configCache.Names()
	if len(names) != 2 || names[0] != "nyc" || names[1] != "pittsburgh" {
		t.Fatalf("Expected [nyc pittsburgh], got %v", names)
	}

	if len(configCache.GetEnabledConfigs()) != 2 {
		t.Errorf("Expected both defaults enabled, got %d", len(configCache.GetEnabledConfigs()))
	}

	nyc, err := configCache.GetConfig("nyc")
	if err != nil {
		t.Fatal(err)
	}
	if nyc.Bills.Types["Resolution"] != "resolution" {
		t.Errorf("Expected Resolution -> resolution, got '%s'", nyc.Bills.Types["Resolution"])
	}
	if len(nyc.Bills.Sessions) != 5 || nyc.Bills.Sessions[0] != 2014 {
		t.Errorf("Unexpected nyc sessions: %v", nyc.Bills.Sessions)
	}
	if nyc.Bills.SponsorAliases["(in conjunction with the Mayor)"] != "Mayor" {
		t.Error("Expected Mayor sponsor alias")
	}

	pgh, err := configCache.GetConfig("pittsburgh")
	if err != nil {
		t.Fatal(err)
	}
	if !pgh.Settings.ScrapeEvents || pgh.Settings.ScrapeBills {
		t.Error("Expected pittsburgh to scrape events only")
	}
	if len(pgh.Status.CancelContains) == 0 {
		t.Error("Expected pittsburgh cancel phrases")
	}
	if pgh.Events.Names["Post Agenda"] != "Agenda Announcement" {
		t.Errorf("Expected Post Agenda rename, got '%s'", pgh.Events.Names["Post Agenda"])
	}
}
