package config

import (
	"fmt"
	"os"
	"path/filepath"

	"hexplorer/internal/classify"
	"hexplorer/internal/snapshot"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

type Theme struct {
	Background          string `toml:"background"`
	LegendBackground    string `toml:"legend_background"`
	LegendHighlight     string `toml:"legend_highlight"`
	BorderColor         string `toml:"border_color"`
	ActivePane          string `toml:"active_pane"`
	SelectionBackground string `toml:"selection_background"`
	DirectoryColor      string `toml:"directory_color"`
	AddressColor        string `toml:"address_color"`
	DisabledColor       string `toml:"disabled_color"`
	ErrorColor          string `toml:"error_color"`
}

type Preview struct {
	// SmallFileThreshold is the size below which files are previewed
	// without asking.
	SmallFileThreshold int64 `toml:"small_file_threshold"`
	// PreviewLarge previews files at or above the threshold too.
	PreviewLarge bool `toml:"preview_large"`
	// MaxBytes caps how much of a large file is read. 0 reads everything.
	MaxBytes int64  `toml:"max_bytes"`
	Encoding string `toml:"encoding"`
}

type Browser struct {
	ShowHidden     bool     `toml:"show_hidden"`
	SortDescending bool     `toml:"sort_descending"`
	Ignore         []string `toml:"ignore"`
	Home           string   `toml:"home"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type Config struct {
	Theme   Theme   `toml:"theme"`
	Preview Preview `toml:"preview"`
	Browser Browser `toml:"browser"`
	Log     Log     `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme: Theme{
			Background:          "#000000",
			LegendBackground:    "#0000FF",
			LegendHighlight:     "#FF0000",
			BorderColor:         "#0000FF",
			ActivePane:          "#FF00FF",
			SelectionBackground: "#FFAA00",
			DirectoryColor:      "#5FAFFF",
			AddressColor:        "#888888",
			DisabledColor:       "#666666",
			ErrorColor:          "#FF5555",
		},
		Preview: Preview{
			SmallFileThreshold: 5120,
			PreviewLarge:       false,
			MaxBytes:           1 << 20,
			Encoding:           classify.DefaultEncoding,
		},
		Browser: Browser{
			Ignore: []string{},
		},
		Log: Log{
			Level: "warn",
		},
	}
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hexplorer.toml"
	}
	return filepath.Join(home, ".config", "hexplorer", "hexplorer.toml")
}

// Load reads the default config file, falling back to defaults when it does
// not exist.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile decodes path over DefaultConfig so unset keys keep their default.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Preview.SmallFileThreshold < 0 {
		return fmt.Errorf("preview.small_file_threshold must not be negative")
	}
	if c.Preview.MaxBytes < 0 {
		return fmt.Errorf("preview.max_bytes must not be negative")
	}
	if _, err := classify.New(c.Preview.Encoding); err != nil {
		return fmt.Errorf("preview.encoding: %w", err)
	}
	if _, err := snapshot.CompileIgnore(c.Browser.Ignore); err != nil {
		return fmt.Errorf("browser.ignore: %w", err)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// HomeDir is the directory the Home action returns to.
func (c *Config) HomeDir() string {
	if c.Browser.Home != "" {
		return c.Browser.Home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "/"
}

func (c *Config) Save() error {
	return c.SaveFile(ConfigPath())
}

func (c *Config) SaveFile(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

type Styles struct {
	Background      lipgloss.Style
	Legend          lipgloss.Style
	LegendHighlight lipgloss.Style
	Border          lipgloss.Style
	ActivePane      lipgloss.Style
	InactivePane    lipgloss.Style
	Selection       lipgloss.Style
	Directory       lipgloss.Style
	Address         lipgloss.Style
	Disabled        lipgloss.Style
	Error           lipgloss.Style
	Normal          lipgloss.Style
	AttrLabel       lipgloss.Style
	AttrValue       lipgloss.Style
	HelpTitle       lipgloss.Style
	HelpKey         lipgloss.Style
	HelpDesc        lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.Background)),
		Legend: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		LegendHighlight: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(theme.BorderColor)),
		ActivePane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(theme.ActivePane)),
		InactivePane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(theme.BorderColor)),
		Selection: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.SelectionBackground)).
			Foreground(lipgloss.Color("#000000")),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.DirectoryColor)).
			Bold(true),
		Address: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.AddressColor)),
		Disabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.DisabledColor)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ErrorColor)).
			Bold(true),
		Normal: lipgloss.NewStyle(),
		AttrLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		AttrValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")),
		HelpTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
	}
}
