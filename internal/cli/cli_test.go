package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	jscanpartial "github.com/romshark/jscan-partial"
	"github.com/romshark/jscan-partial/internal/cli"
)

func stream(t *testing.T, input string, c cli.Config) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cli.Stream(context.Background(), strings.NewReader(input), &out, c)
	return out.String(), err
}

func TestStream(t *testing.T) {
	for _, td := range []struct {
		name   string
		input  string
		config cli.Config
		expect string
	}{
		{
			name:   "each",
			input:  `[1,2,3]`,
			config: cli.Config{ChunkSize: 2, Emit: cli.EmitEach},
			expect: "[1]\n[1,2]\n[1,2,3]\n[1,2,3]\n",
		},
		{
			name:   "each_single_chunk",
			input:  `{"a":"b"}`,
			config: cli.Config{ChunkSize: 64, Emit: cli.EmitEach},
			expect: "{\"a\":\"b\"}\n",
		},
		{
			name:   "final",
			input:  `{"a":"b"}`,
			config: cli.Config{ChunkSize: 3, Emit: cli.EmitFinal},
			expect: "{\"a\":\"b\"}\n",
		},
		{
			name:  "complete_partial",
			input: `[1,`,
			config: cli.Config{ChunkSize: 1, Emit: cli.EmitFinal, Options: jscanpartial.Options{
				CompletePartialValues: true,
			}},
			expect: "[1]\n",
		},
		{
			name:  "empty_input",
			input: ``,
			config: cli.Config{ChunkSize: 1, Emit: cli.EmitEach, Options: jscanpartial.Options{
				CompletePartialValues: true,
			}},
			expect: "",
		},
		{
			name:  "comments",
			input: `[1 /* c */]`,
			config: cli.Config{ChunkSize: 4, Emit: cli.EmitFinal, Options: jscanpartial.Options{
				AllowComments: true,
			}},
			expect: "[1]\n",
		},
	} {
		t.Run(td.name, func(t *testing.T) {
			out, err := stream(t, td.input, td.config)
			require.NoError(t, err)
			require.Equal(t, td.expect, out)
		})
	}
}

func TestStreamErr(t *testing.T) {
	_, err := stream(t, `[1,`, cli.Config{ChunkSize: 2, Emit: cli.EmitFinal})
	require.ErrorIs(t, err, jscanpartial.ErrUnexpectedEOF)

	_, err = stream(t, `[1,}`, cli.Config{ChunkSize: 2, Emit: cli.EmitEach})
	require.ErrorIs(t, err, jscanpartial.ErrMalformedToken)

	_, err = stream(t, `[1]`, cli.Config{ChunkSize: 0, Emit: cli.EmitEach})
	require.Error(t, err)

	_, err = stream(t, `[1]`, cli.Config{ChunkSize: 1, Emit: "sometimes"})
	require.Error(t, err)
}

func TestStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := cli.Stream(ctx, strings.NewReader(`[1]`), &out, cli.Config{
		ChunkSize: 1, Emit: cli.EmitEach,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, out.Len())
}

// execute runs the root command with args and input
// and returns stdout and stderr.
func execute(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := cli.NewRootCmd(viper.New())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCmd(t *testing.T) {
	out, _, err := execute(t, `{"user_name":"x"}`,
		"--chunk-size", "4", "--emit", "final", "--snake-case-keys")
	require.NoError(t, err)
	require.Equal(t, "{\"userName\":\"x\"}\n", out)

	out, _, err = execute(t, `[true, false,]`,
		"--chunk-size", "64", "--allow-trailing-commas")
	require.NoError(t, err)
	require.Equal(t, "[true,false]\n", out)

	out, _, err = execute(t, `{a:1}`, "--allow-unquoted-keys", "--emit=final")
	require.NoError(t, err)
	require.Equal(t, "{\"a\":1}\n", out)

	_, _, err = execute(t, `{a:1}`)
	require.ErrorIs(t, err, jscanpartial.ErrUnquotedKey)

	out, _, err = execute(t, `[[[1]]]`, "--max-depth", "2")
	require.ErrorIs(t, err, jscanpartial.ErrMaxDepth)
	require.Empty(t, out)

	_, _, err = execute(t, `[1]`, "--emit", "never")
	require.Error(t, err)
}

func TestRootCmdFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(p, []byte(`["a","b"]`), 0o600))

	out, _, err := execute(t, "", "--emit", "final", p)
	require.NoError(t, err)
	require.Equal(t, "[\"a\",\"b\"]\n", out)

	_, _, err = execute(t, "", filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootCmdConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(
		"emit: final\nchunk-size: 1\nallow-comments: true\n",
	), 0o600))

	out, _, err := execute(t, `[1 /* one */]`, "--config", p)
	require.NoError(t, err)
	require.Equal(t, "[1]\n", out)

	// Flags override the config file.
	out, _, err = execute(t, `[1,2]`, "--config", p, "--emit", "each", "--chunk-size", "3")
	require.NoError(t, err)
	require.Equal(t, "[1]\n[1,2]\n", out)

	_, _, err = execute(t, `[1]`, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRootCmdEnv(t *testing.T) {
	t.Setenv("JSCANPARTIAL_EMIT", "final")
	t.Setenv("JSCANPARTIAL_CHUNK_SIZE", "1")
	out, _, err := execute(t, `[1,2,3]`)
	require.NoError(t, err)
	require.Equal(t, "[1,2,3]\n", out)
}

func TestRootCmdVerbose(t *testing.T) {
	_, stderr, err := execute(t, `[1]`, "--verbose", "--chunk-size", "2")
	require.NoError(t, err)
	require.Contains(t, stderr, "fed chunk")
	require.Contains(t, stderr, "finished")

	_, stderr, err = execute(t, `[1]`)
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, `"version": "dev"`)
}
