package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/tkimura/transflow/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transflow [text]",
		Short: "Multi-provider catalog translation pipeline",
		Long: `transflow translates technical catalog text into many languages at once.

It masks inline markup before sending text to a provider, shares one API
call across all target languages, remembers every translation in a
persistent memory, and tracks spending against a fixed monthly budget.

Examples:
  transflow "エアシリンダは動作中です。"        # Translate one segment
  transflow --file page.txt -t en,de,fr        # Translate a file line-by-line
  transflow --stats                            # Show cost and cache summary`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.transflow.yaml)")

	// Local flags
	cmd.Flags().StringVar(&flags.InputFile, "file", "", "Translate a text file, one segment per line")
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", flags.SourceLang, "Source language code")
	cmd.Flags().StringSliceVarP(&flags.TargetLangs, "targets", "t", flags.TargetLangs, "Target language codes (comma-separated)")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for bilingual files")
	cmd.Flags().Float64Var(&flags.BudgetJPY, "budget", flags.BudgetJPY, "Monthly spending ceiling in JPY")
	cmd.Flags().BoolVar(&flags.PreserveTags, "preserve-tags", flags.PreserveTags, "Mask inline markup before translation and restore it afterwards")
	cmd.Flags().BoolVar(&flags.EnglishFirst, "english-first", false, "Move English to the first output column when present")
	cmd.Flags().BoolVar(&flags.Assess, "assess", false, "Run the back-translation quality check on every result")
	cmd.Flags().StringVar(&flags.GlossaryFile, "glossary", "", "CSV file of locked glossary terms")
	cmd.Flags().StringVar(&flags.MemoryPath, "memory", DefaultMemoryPath(), "Translation memory database file")
	cmd.Flags().IntVar(&flags.MemoryMax, "memory-max", flags.MemoryMax, "Maximum translation memory entries, 0 for unlimited")
	cmd.Flags().BoolVar(&flags.ShowStats, "stats", false, "Print cost and cache statistics and exit")

	// Provider flags
	cmd.Flags().StringVar(&flags.GrokModel, "grok-model", "", "Override the grok model identifier")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", "", "Override the gemini model identifier")
	cmd.Flags().StringVar(&flags.ClaudeModel, "claude-model", "", "Override the claude model identifier")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("translate.source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("translate.targets", cmd.Flags().Lookup("targets"))
	viper.BindPFlag("translate.preserve_tags", cmd.Flags().Lookup("preserve-tags"))
	viper.BindPFlag("translate.english_first", cmd.Flags().Lookup("english-first"))
	viper.BindPFlag("budget.ceiling_jpy", cmd.Flags().Lookup("budget"))
	viper.BindPFlag("memory.path", cmd.Flags().Lookup("memory"))
	viper.BindPFlag("memory.max_entries", cmd.Flags().Lookup("memory-max"))
	viper.BindPFlag("glossary.path", cmd.Flags().Lookup("glossary"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	// Bind provider flags
	viper.BindPFlag("provider.grok_model", cmd.Flags().Lookup("grok-model"))
	viper.BindPFlag("provider.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("provider.claude_model", cmd.Flags().Lookup("claude-model"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".transflow" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".transflow")
	}

	// Environment variables
	viper.SetEnvPrefix("TRANSFLOW")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// DefaultMemoryPath returns the default location of the translation
// memory database.
func DefaultMemoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "transflow-memory.db"
	}
	return filepath.Join(home, ".local", "state", "transflow", "memory.db")
}

// GetGrokKey retrieves the x.ai API key from environment or config
func GetGrokKey() string {
	// First check environment variable
	if key := os.Getenv("XAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("provider.grok_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("provider.gemini_key")
}

// GetClaudeKey retrieves the Anthropic API key from environment or config
func GetClaudeKey() string {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("provider.claude_key")
}
