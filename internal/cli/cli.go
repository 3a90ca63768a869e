// Package cli implements the jscanpartial command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	jscanpartial "github.com/romshark/jscan-partial"
)

// Configuration keys, also used as flag names.
const (
	KeyConfig              = "config"
	KeyChunkSize           = "chunk-size"
	KeyEmit                = "emit"
	KeyAllowComments       = "allow-comments"
	KeyAllowTrailingCommas = "allow-trailing-commas"
	KeyAllowUnquotedKeys   = "allow-unquoted-keys"
	KeySnakeCaseKeys       = "snake-case-keys"
	KeyCompletePartial     = "complete-partial"
	KeyMaxDepth            = "max-depth"
	KeyVerbose             = "verbose"
)

// EnvPrefix is the prefix of environment variables overriding flags,
// for example JSCANPARTIAL_CHUNK_SIZE.
const EnvPrefix = "JSCANPARTIAL"

// NewRootCmd creates the root command reading configuration from v.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jscanpartial [file]",
		Short: "Decode JSON incrementally and print the partial value after every chunk",
		Long: heredoc.Doc(`
			Reads a JSON document from a file or stdin in fixed-size chunks,
			feeds every chunk to an incremental decoder and prints the value
			decoded so far as a single line of JSON.
		`),
		Example: heredoc.Doc(`
			# Watch a document being decoded 8 bytes at a time
			$ jscanpartial --chunk-size 8 document.json

			# Only print the final value of a JSON5-ish document
			$ cat config.json | jscanpartial --emit final --allow-comments --allow-trailing-commas
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), v.GetBool(KeyVerbose))
			return run(cmd, v, logger, args)
		},
	}

	f := cmd.PersistentFlags()
	f.String(KeyConfig, "", "Config file (default is $HOME/.jscanpartial.yaml)")
	f.Bool(KeyVerbose, false, "Log every chunk")

	f = cmd.Flags()
	f.Int(KeyChunkSize, 16, "Number of bytes fed to the decoder at once")
	f.String(KeyEmit, EmitEach, "When to print the value. Accepts 'each' or 'final'")
	f.Bool(KeyAllowComments, false, "Accept // line and /* block */ comments")
	f.Bool(KeyAllowTrailingCommas, false, "Accept a comma before ] and }")
	f.Bool(KeyAllowUnquotedKeys, false, "Accept unquoted object keys")
	f.Bool(KeySnakeCaseKeys, false, "Convert snake_case object keys to camelCase")
	f.Bool(KeyCompletePartial, false, "Print the partial value of incomplete documents")
	f.Int(KeyMaxDepth, jscanpartial.DefaultMaxDepth, "Maximum nesting depth")

	_ = v.BindPFlags(cmd.PersistentFlags())
	_ = v.BindPFlags(cmd.Flags())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// initConfig reads the config file if one was given or exists
// in the home directory.
func initConfig(v *viper.Viper) error {
	if p := v.GetString(KeyConfig); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return nil // No home, no default config.
	}
	v.AddConfigPath(home)
	v.SetConfigName(".jscanpartial")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "jscanpartial"})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// ConfigFrom reads the stream configuration from v.
func ConfigFrom(v *viper.Viper) (Config, error) {
	c := Config{
		ChunkSize: v.GetInt(KeyChunkSize),
		Emit:      v.GetString(KeyEmit),
		Options: jscanpartial.Options{
			CompletePartialValues: v.GetBool(KeyCompletePartial),
			AllowComments:         v.GetBool(KeyAllowComments),
			AllowTrailingCommas:   v.GetBool(KeyAllowTrailingCommas),
			AllowUnquotedKeys:     v.GetBool(KeyAllowUnquotedKeys),
			KeyDecoding:           jscanpartial.KeyDecodingUseDefault,
			MaxDepth:              v.GetInt(KeyMaxDepth),
		},
	}
	if v.GetBool(KeySnakeCaseKeys) {
		c.Options.KeyDecoding = jscanpartial.ConvertFromSnakeCase
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func run(cmd *cobra.Command, v *viper.Viper, logger *log.Logger, args []string) error {
	c, err := ConfigFrom(v)
	if err != nil {
		return err
	}
	c.Logger = logger

	var in io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
		logger.Debug("reading file", "path", args[0])
	}
	return Stream(cmd.Context(), in, cmd.OutOrStdout(), c)
}
