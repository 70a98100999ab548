package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/tomasbasham/mpform"
	"github.com/tomasbasham/mpform/internal/cliconfig"
	"github.com/tomasbasham/mpform/internal/paramfile"
)

var errTerminal = errors.New("refusing to write a multipart body to a terminal; use --output or --force")

var exampleUsage = strings.TrimSpace(`
  mpform encode --params params.toml --output body.bin
  mpform encode -F name=bob -F avatar=@pic.png -F 'user[role]=admin' -o body.bin
  mpform boundary
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCmd(stdout, stderr io.Writer, isTerminal func() bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "mpform",
		Short:         "Encode nested parameters as a multipart/form-data body",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newEncodeCmd(stdout, stderr, isTerminal))
	root.AddCommand(newBoundaryCmd(stdout))
	return root
}

func newEncodeCmd(stdout, stderr io.Writer, isTerminal func() bool) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Write a multipart body built from a TOML file and/or fields",
		Long: strings.TrimSpace(`
Builds a parameter tree from --params (a TOML file whose tables become nested
keys) followed by every --field in order, and writes the encoded body to
--output or standard output. The Content-Type header value is printed to
standard error. String values of the form @path are uploaded as files.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.ToStdout() && !cfg.Force && isTerminal() {
				return errTerminal
			}

			log := cliconfig.Logger(stderr, cfg.Verbose)
			return runEncode(&cfg, stdout, stderr, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "config file (default $HOME/.mpform/config.toml)")
	f.StringVarP(&cfg.ParamsFile, "params", "p", cfg.ParamsFile, "TOML file holding the parameter tree")
	f.StringArrayVarP(&cfg.Fields, "field", "F", nil, "field as key=value or key=@path (repeatable)")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, `output file, "-" for standard output`)
	f.StringVar(&cfg.Boundary, "boundary", "", "use a fixed boundary instead of a random one")
	f.StringVar(&cfg.TempDir, "temp-dir", "", "directory for spooled bodies")
	f.Int64Var(&cfg.SpoolThreshold, "spool-threshold", cfg.SpoolThreshold, "bytes kept in memory before spooling to disk (-1 never spools)")
	f.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "bytes read from a file per chunk")
	f.BoolVar(&cfg.EscapeQuotes, "escape-quotes", false, "escape quotes and backslashes in names")
	f.BoolVar(&cfg.Force, "force", false, "write the body to standard output even if it is a terminal")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every part written")
	return cmd
}

func runEncode(cfg *cliconfig.Config, stdout, stderr io.Writer, log zerolog.Logger) (err error) {
	set := paramfile.New()
	if cfg.ParamsFile != "" {
		if set, err = paramfile.Load(cfg.ParamsFile); err != nil {
			return fmt.Errorf("load params: %w", err)
		}
	}
	defer func() {
		if cerr := set.Close(); err == nil {
			err = cerr
		}
	}()

	for _, spec := range cfg.Fields {
		if err := set.AddField(spec); err != nil {
			return err
		}
	}

	enc, err := mpform.NewMultipartEncoder(cfg.EncoderOptions(log)...)
	if err != nil {
		return err
	}
	defer enc.Close()

	out, err := enc.Encode(set.Tree)
	if err != nil {
		return err
	}
	defer out.Close()

	w := stdout
	if !cfg.ToStdout() {
		f, cerr := os.Create(cfg.Output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	log.Debug().
		Int64("bytes", out.Len()).
		Bool("spooled", out.Spooled()).
		Str("output", cfg.Output).
		Msg("body written")
	fmt.Fprintln(stderr, out.ContentType())
	return nil
}

func newBoundaryCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "boundary",
		Short: "Print a freshly generated boundary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := mpform.NewMultipartEncoder(mpform.WithSpoolThreshold(-1))
			if err != nil {
				return err
			}
			defer enc.Close()
			_, err = fmt.Fprintln(stdout, enc.Boundary())
			return err
		},
	}
}
