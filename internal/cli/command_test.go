package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "transflow [text]" {
		t.Errorf("Expected Use to be 'transflow [text]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "translation pipeline") {
		t.Errorf("Expected Short description to mention the translation pipeline")
	}

	// Test that flags are set up
	flagTests := []struct {
		name     string
		expected bool
	}{
		{"config", true},
		{"file", true},
		{"source", true},
		{"targets", true},
		{"output", true},
		{"budget", true},
		{"preserve-tags", true},
		{"english-first", true},
		{"assess", true},
		{"glossary", true},
		{"memory", true},
		{"memory-max", true},
		{"stats", true},
		{"grok-model", true},
		{"gemini-model", true},
		{"claude-model", true},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.name == "config" {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil && tt.expected {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	sourceFlag := cmd.Flags().Lookup("source")
	if sourceFlag == nil {
		t.Fatal("source flag not found")
	}
	if sourceFlag.DefValue != "ja" {
		t.Errorf("Expected default source to be ja, got %s", sourceFlag.DefValue)
	}

	memoryFlag := cmd.Flags().Lookup("memory")
	if memoryFlag == nil {
		t.Fatal("memory flag not found")
	}
	if memoryFlag.DefValue != DefaultMemoryPath() {
		t.Errorf("Expected default memory path %s, got %s", DefaultMemoryPath(), memoryFlag.DefValue)
	}

	tagsFlag := cmd.Flags().Lookup("preserve-tags")
	if tagsFlag == nil {
		t.Fatal("preserve-tags flag not found")
	}
	if tagsFlag.DefValue != "true" {
		t.Errorf("Expected preserve-tags to default to true, got %s", tagsFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		cfgFile   string
		setupFunc func(t *testing.T) string
	}{
		{
			name:    "with config file",
			cfgFile: "test-config.yaml",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `provider:
  grok_key: test-key
output:
  directory: /test/output`
				err := os.WriteFile(cfgPath, []byte(content), 0644)
				if err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:    "without config file",
			cfgFile: "",
			setupFunc: func(t *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			cfgPath := tt.setupFunc(t)
			if tt.cfgFile != "" && cfgPath != "" {
				tt.cfgFile = cfgPath
			}

			InitConfig(tt.cfgFile)

			// Test environment variable prefix
			os.Setenv("TRANSFLOW_TEST_VAR", "test-value")
			defer os.Unsetenv("TRANSFLOW_TEST_VAR")

			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestGetProviderKeys(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		envVar    string
		configKey string
		getter    func() string
	}{
		{"grok", "XAI_API_KEY", "provider.grok_key", GetGrokKey},
		{"gemini", "GEMINI_API_KEY", "provider.gemini_key", GetGeminiKey},
		{"claude", "ANTHROPIC_API_KEY", "provider.claude_key", GetClaudeKey},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_from_environment", func(t *testing.T) {
			viper.Reset()
			os.Setenv(tt.envVar, "env-test-key")
			defer os.Unsetenv(tt.envVar)
			viper.Set(tt.configKey, "config-test-key")

			if got := tt.getter(); got != "env-test-key" {
				t.Errorf("Expected env key to win, got %v", got)
			}
		})

		t.Run(tt.name+"_from_config", func(t *testing.T) {
			viper.Reset()
			os.Unsetenv(tt.envVar)
			viper.Set(tt.configKey, "config-test-key")

			if got := tt.getter(); got != "config-test-key" {
				t.Errorf("Expected config key, got %v", got)
			}
		})

		t.Run(tt.name+"_empty_when_neither_set", func(t *testing.T) {
			viper.Reset()
			os.Unsetenv(tt.envVar)

			if got := tt.getter(); got != "" {
				t.Errorf("Expected empty key, got %v", got)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	// Reset viper
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("output", "/test/output")
	cmd.Flags().Set("source", "en")
	cmd.Flags().Set("budget", "5000")

	bindFlagsToViper(cmd)

	// Test that values are bound
	if viper.GetString("output.directory") != "/test/output" {
		t.Errorf("Expected output.directory to be /test/output, got %s", viper.GetString("output.directory"))
	}

	if viper.GetString("translate.source") != "en" {
		t.Errorf("Expected translate.source to be en, got %s", viper.GetString("translate.source"))
	}

	if viper.GetFloat64("budget.ceiling_jpy") != 5000 {
		t.Errorf("Expected budget.ceiling_jpy to be 5000, got %v", viper.GetFloat64("budget.ceiling_jpy"))
	}
}
